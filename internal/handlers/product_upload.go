package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/logger"
)

const maxMultipartMemory = 32 << 20

// subcategoryFormFields are merged into the product's subcategory tags.
var subcategoryFormFields = []string{"subcategories", "collections", "materials", "groups", "age_groups"}

/*
=======================
  PARSER
=======================
*/

func parseMultipartProductRequest(c *gin.Context) (catalog.CreateInput, []catalog.ImageFile, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return catalog.CreateInput{}, nil, apperr.InvalidInput("body", "invalid multipart form").With("reason", err.Error())
	}

	input := catalog.CreateInput{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Category:    strings.TrimSpace(c.PostForm("category")),
	}
	if input.Title == "" {
		return catalog.CreateInput{}, nil, apperr.InvalidInput("title", "title is required")
	}

	// ---- NUMBER FIELDS ----

	value, ok := c.GetPostForm("price")
	if !ok {
		return catalog.CreateInput{}, nil, apperr.InvalidInput("price", "price is required")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return catalog.CreateInput{}, nil, apperr.InvalidInput("price", "price must be a number")
	}
	input.Price = price

	if value, ok := c.GetPostForm("stock"); ok {
		stock, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return catalog.CreateInput{}, nil, apperr.InvalidInput("stock", "stock must be an integer")
		}
		input.Stock = stock
	}

	// ---- SUBCATEGORY TAGS ----

	for _, field := range subcategoryFormFields {
		for _, raw := range c.PostFormArray(field) {
			values, err := parseListValue(raw)
			if err != nil {
				return catalog.CreateInput{}, nil, apperr.InvalidInput(field, "invalid list format")
			}
			input.Subcategories = append(input.Subcategories, values...)
		}
	}

	// ---- IMAGE FILES ----

	var files []catalog.ImageFile
	if c.Request.MultipartForm != nil {
		for _, header := range c.Request.MultipartForm.File["images"] {
			file, err := readUpload(header)
			if err != nil {
				return catalog.CreateInput{}, nil, err
			}
			files = append(files, file)
		}
	}

	return input, files, nil
}

// parseListValue accepts a JSON array or a comma separated list.
func parseListValue(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var values []string
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, err
		}
		return values, nil
	}
	return splitQueryList([]string{raw}), nil
}

func readUpload(header *multipart.FileHeader) (catalog.ImageFile, error) {
	in, err := header.Open()
	if err != nil {
		return catalog.ImageFile{}, apperr.InvalidInput("images", fmt.Sprintf("cannot open %s", header.Filename))
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return catalog.ImageFile{}, apperr.InvalidInput("images", fmt.Sprintf("cannot read %s", header.Filename))
	}
	return catalog.ImageFile{Filename: header.Filename, Data: data}, nil
}

/*
=======================
  HANDLER
=======================
*/

func UploadProduct(products ProductWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/products/upload"
		defer handlePanic(c, route)

		input, files, err := parseMultipartProductRequest(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		log.Info(log.WithFields(ctx, map[string]any{
			"title":  input.Title,
			"images": len(files),
		}), "creating product with images")

		product, err := products.CreateWithImages(ctx, input, files)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
