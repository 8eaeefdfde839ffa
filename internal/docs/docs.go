// Package docs sirve la documentación OpenAPI embebida y Swagger UI.
package docs

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml swagger.html
var fs embed.FS

var (
	jsonOnce sync.Once
	jsonDoc  []byte
	jsonErr  error
)

func assetHandler(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := fs.ReadFile(name)
		if err != nil {
			http.Error(w, name+" not found", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func OpenAPIHandler() http.HandlerFunc {
	return assetHandler("openapi.yaml", "application/yaml; charset=utf-8")
}

func SwaggerUIHandler() http.HandlerFunc {
	return assetHandler("swagger.html", "text/html; charset=utf-8")
}

// OpenAPIJSONHandler sirve el mismo documento convertido a JSON.
func OpenAPIJSONHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := OpenAPIJSON()
		if err != nil {
			http.Error(w, "openapi not available", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

// OpenAPIJSON parsea openapi.yaml una sola vez y lo devuelve como JSON.
func OpenAPIJSON() ([]byte, error) {
	jsonOnce.Do(func() {
		raw, err := fs.ReadFile("openapi.yaml")
		if err != nil {
			jsonErr = err
			return
		}
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			jsonErr = fmt.Errorf("parse openapi.yaml: %w", err)
			return
		}
		if _, ok := doc["paths"]; !ok {
			jsonErr = fmt.Errorf("openapi.yaml has no paths")
			return
		}
		jsonDoc, jsonErr = json.Marshal(doc)
	})
	return jsonDoc, jsonErr
}
