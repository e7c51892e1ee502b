package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// Column order of the catalog sheet. List cells are comma separated; colors
// are written "Black:#000000".
const (
	colID = iota
	colName
	colBrand
	colPrice
	colCategory
	colStock
	colImages
	colTags
	colColors
	colSizes
	colDescription
	colFeatures
	colComposition
	colSpecifications

	requiredColumns = colImages + 1
)

func readProductsFromXLSX(filePath string) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	// first row is the header
	for i, row := range rows[1:] {
		product, err := parseProductRow(row)
		if err != nil {
			fmt.Printf("Skipping row %d: %v\n", i+2, err)
			skipped++
			continue
		}
		if seen[product.ID] {
			fmt.Printf("Skipping row %d: duplicate id %s\n", i+2, product.ID)
			skipped++
			continue
		}
		seen[product.ID] = true
		products = append(products, product)
	}

	return products, skipped, nil
}

func parseProductRow(row []string) (model.Product, error) {
	if len(row) < requiredColumns {
		return model.Product{}, fmt.Errorf("expected at least %d columns, got %d", requiredColumns, len(row))
	}
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	price, err := strconv.ParseInt(cell(colPrice), 10, 64)
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid price %q", cell(colPrice))
	}
	stock, err := strconv.Atoi(cell(colStock))
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid stock %q", cell(colStock))
	}

	product := model.Product{
		ID:             cell(colID),
		Name:           cell(colName),
		Brand:          cell(colBrand),
		Price:          price,
		Category:       model.ProductCategory(strings.ToLower(cell(colCategory))),
		Stock:          stock,
		Images:         splitList(cell(colImages)),
		Tags:           splitList(strings.ToLower(cell(colTags))),
		Sizes:          splitList(cell(colSizes)),
		Description:    cell(colDescription),
		Features:       splitList(cell(colFeatures)),
		Composition:    splitList(cell(colComposition)),
		Specifications: splitList(cell(colSpecifications)),
	}
	if product.ID == "" {
		return model.Product{}, fmt.Errorf("missing id")
	}

	for _, c := range splitList(cell(colColors)) {
		name, hex, _ := strings.Cut(c, ":")
		product.Colors = append(product.Colors, model.Color{Name: strings.TrimSpace(name), Hex: strings.TrimSpace(hex)})
	}

	if err := product.Validate(); err != nil {
		return model.Product{}, err
	}
	return product, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
