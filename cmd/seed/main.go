package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// storeRow is one data row of the import sheet.
type storeRow struct {
	Line       int
	Name       string
	Email      string
	Address    string
	OwnerEmail string
}

// Recognised header names, lowercased. The store export uses the same names,
// so an exported workbook can be imported into another database.
const (
	colName       = "name"
	colEmail      = "email"
	colAddress    = "address"
	colOwnerEmail = "owner email"
)

func main() {
	yes := flag.Bool("y", false, "import without asking for confirmation")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-y] <xlsx_file_path>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.ConfigForEnvironment(cfg.Server.Environment))

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX file:", err)
	}
	defer f.Close()

	rows, err := readStoreRows(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Total stores to import: %d\n", len(rows))

	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	adminService := service.NewAdminService(
		userRepo,
		repository.NewStoreRepository(db.GetDB()),
		repository.NewRatingRepository(db.GetDB()),
	)

	imported := importStores(os.Stdout, adminService, userRepo, rows)
	fmt.Println("Import completed.")
	fmt.Printf("Stores imported: %d, skipped: %d\n", imported, len(rows)-imported)
}

// readStoreRows reads the first sheet. The first row is a header; columns
// are located by name so their order does not matter.
func readStoreRows(f *excelize.File) ([]storeRow, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colName, colEmail, colAddress} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var result []storeRow
	for i, row := range rows[1:] {
		r := storeRow{
			Line:       i + 2,
			Name:       cell(row, colName),
			Email:      cell(row, colEmail),
			Address:    cell(row, colAddress),
			OwnerEmail: cell(row, colOwnerEmail),
		}
		if r.Name == "" && r.Email == "" && r.Address == "" {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// importStores creates each row through the admin service so the same
// validation and uniqueness rules apply as for the API. Failed rows are
// reported to out and skipped.
func importStores(out io.Writer, admin service.AdminService, users repository.UserRepository, rows []storeRow) int {
	imported := 0
	for _, r := range rows {
		input := service.CreateStoreInput{
			Name:    r.Name,
			Email:   r.Email,
			Address: r.Address,
		}

		if r.OwnerEmail != "" {
			owner, err := users.FindByEmail(r.OwnerEmail)
			if err != nil {
				fmt.Fprintf(out, "line %d: owner %s not found, skipped\n", r.Line, r.OwnerEmail)
				continue
			}
			input.OwnerID = &owner.ID
		}

		if _, err := admin.CreateStore(input); err != nil {
			fmt.Fprintf(out, "line %d: %v, skipped\n", r.Line, err)
			continue
		}
		imported++
	}
	return imported
}
