package vector

import (
	"context"
	"strings"
	"unicode"

	"github.com/weaviate/weaviate/entities/models"
)

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	DeleteClass(ctx context.Context, className string) error
}

const (
	PropContent  = "content"
	PropPosition = "position"
)

// ClassName turns a collection name into a valid Weaviate class name.
// Weaviate requires class names to start with an upper-case letter.
func ClassName(collection string) string {
	if collection == "" {
		return ""
	}
	r := []rune(collection)
	r[0] = unicode.ToUpper(r[0])
	return strings.ReplaceAll(string(r), "-", "_")
}

// ChunkClass is the class definition used for a chunk collection. Vectors are
// supplied by the caller, so no vectorizer module is configured.
func ChunkClass(className string) *models.Class {
	return &models.Class{
		Class:       className,
		Description: "A chunk of an uploaded text",
		Vectorizer:  "none",
		VectorIndexConfig: map[string]interface{}{
			"distance": "cosine",
		},
		Properties: []*models.Property{
			{
				Name:     PropContent,
				DataType: []string{"text"},
			},
			{
				Name:     PropPosition,
				DataType: []string{"int"},
			},
		},
	}
}

// RecreateClass drops className if it exists and creates it empty.
func RecreateClass(ctx context.Context, client SchemaClient, className string) error {
	exists, err := client.ClassExists(ctx, className)
	if err != nil {
		return err
	}
	if exists {
		if err := client.DeleteClass(ctx, className); err != nil {
			return err
		}
	}
	return client.CreateClass(ctx, ChunkClass(className))
}
