package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/roy-rc/sfstore/config"
	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/app/repository"
	"github.com/roy-rc/sfstore/internal/db"
	"github.com/roy-rc/sfstore/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Imports the catalog from an XLSX workbook with two sheets:
//
//	Categories: Name | Description | Parent Slug
//	Products:   Name | SKU | Description | Price | Stock | Category Slugs | Image
//
// Category slugs on products are comma separated.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(db.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	categoriesBySlug, err := importCategories(f, categoryRepo)
	if err != nil {
		log.Fatal("Failed to import categories:", err)
	}
	fmt.Printf("Categories imported: %d\n", len(categoriesBySlug))

	count, err := importProducts(f, productRepo, categoriesBySlug)
	if err != nil {
		log.Fatal("Failed to import products:", err)
	}
	fmt.Printf("Products imported: %d\n", count)
	fmt.Println("Import completed successfully!")
}

func importCategories(f *excelize.File, repo repository.CategoryRepository) (map[string]*model.Category, error) {
	rows, err := f.GetRows("Categories")
	if err != nil {
		return nil, fmt.Errorf("failed to read Categories sheet: %w", err)
	}

	bySlug := make(map[string]*model.Category)

	// First pass creates the categories, second pass links parents so row
	// order does not matter.
	type pending struct {
		category   *model.Category
		parentSlug string
	}
	var pendings []pending

	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		category := &model.Category{
			Name:     strings.TrimSpace(row[0]),
			Slug:     util.Slugify(row[0]),
			IsActive: true,
		}
		if len(row) > 1 {
			category.Description = strings.TrimSpace(row[1])
		}

		if err := repo.Create(category); err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+1, category.Name, err)
		}
		bySlug[category.Slug] = category

		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			pendings = append(pendings, pending{category: category, parentSlug: strings.TrimSpace(row[2])})
		}
	}

	for _, p := range pendings {
		parent, ok := bySlug[p.parentSlug]
		if !ok {
			return nil, fmt.Errorf("category %s references unknown parent %q", p.category.Name, p.parentSlug)
		}
		p.category.ParentID = &parent.ID
		if err := repo.Update(p.category); err != nil {
			return nil, err
		}
	}

	return bySlug, nil
}

func importProducts(f *excelize.File, repo repository.ProductRepository, categories map[string]*model.Category) (int, error) {
	rows, err := f.GetRows("Products")
	if err != nil {
		return 0, fmt.Errorf("failed to read Products sheet: %w", err)
	}

	count := 0
	for i, row := range rows {
		if i == 0 || len(row) < 5 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		price, err := decimal.NewFromString(strings.TrimSpace(row[3]))
		if err != nil {
			return count, fmt.Errorf("row %d: invalid price %q", i+1, row[3])
		}
		stock, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil {
			return count, fmt.Errorf("row %d: invalid stock %q", i+1, row[4])
		}

		product := &model.Product{
			Name:        strings.TrimSpace(row[0]),
			Slug:        util.Slugify(row[0]),
			SKU:         strings.TrimSpace(row[1]),
			Description: strings.TrimSpace(row[2]),
			Price:       price,
			Stock:       stock,
			IsActive:    true,
		}
		if len(row) > 6 {
			product.Image = strings.TrimSpace(row[6])
		}

		if err := repo.Create(product); err != nil {
			return count, fmt.Errorf("row %d (%s): %w", i+1, product.Name, err)
		}

		if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
			var linked []model.Category
			for _, slug := range strings.Split(row[5], ",") {
				slug = strings.TrimSpace(slug)
				category, ok := categories[slug]
				if !ok {
					return count, fmt.Errorf("row %d: unknown category %q", i+1, slug)
				}
				linked = append(linked, *category)
			}
			if err := repo.ReplaceCategories(product, linked); err != nil {
				return count, err
			}
		}
		count++
	}

	return count, nil
}
