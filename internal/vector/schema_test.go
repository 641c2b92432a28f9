package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/weaviate/weaviate/entities/models"
)

type MockSchemaClient struct {
	Exists       bool
	ExistsErr    error
	CreatedClass *models.Class
	Deleted      []string
	Calls        []string
}

func (m *MockSchemaClient) ClassExists(ctx context.Context, className string) (bool, error) {
	m.Calls = append(m.Calls, "exists")
	return m.Exists, m.ExistsErr
}

func (m *MockSchemaClient) CreateClass(ctx context.Context, class *models.Class) error {
	m.Calls = append(m.Calls, "create")
	m.CreatedClass = class
	return nil
}

func (m *MockSchemaClient) DeleteClass(ctx context.Context, className string) error {
	m.Calls = append(m.Calls, "delete")
	m.Deleted = append(m.Deleted, className)
	return nil
}

func TestRecreateClass_CreatesWhenMissing(t *testing.T) {
	client := &MockSchemaClient{}
	if err := RecreateClass(context.Background(), client, "My_rag_collection_cohere"); err != nil {
		t.Fatalf("RecreateClass failed: %v", err)
	}

	if client.CreatedClass == nil {
		t.Fatal("Class not created")
	}
	if len(client.Deleted) != 0 {
		t.Errorf("Should not delete a missing class, deleted %v", client.Deleted)
	}
	if client.CreatedClass.Vectorizer != "none" {
		t.Errorf("Vectorizer = %q, want none", client.CreatedClass.Vectorizer)
	}

	expectedProps := map[string]string{
		PropContent:  "text",
		PropPosition: "int",
	}
	if len(client.CreatedClass.Properties) != len(expectedProps) {
		t.Fatalf("got %d properties, want %d", len(client.CreatedClass.Properties), len(expectedProps))
	}
	for _, prop := range client.CreatedClass.Properties {
		expectedType, ok := expectedProps[prop.Name]
		if !ok {
			t.Errorf("Unexpected property %s", prop.Name)
			continue
		}
		if len(prop.DataType) == 0 || prop.DataType[0] != expectedType {
			t.Errorf("Property %s has wrong DataType: %v (expected %s)", prop.Name, prop.DataType, expectedType)
		}
	}
}

func TestRecreateClass_DropsExisting(t *testing.T) {
	client := &MockSchemaClient{Exists: true}
	if err := RecreateClass(context.Background(), client, "Docs"); err != nil {
		t.Fatalf("RecreateClass failed: %v", err)
	}

	want := []string{"exists", "delete", "create"}
	if len(client.Calls) != len(want) {
		t.Fatalf("calls = %v, want %v", client.Calls, want)
	}
	for i := range want {
		if client.Calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", client.Calls, want)
		}
	}
}

func TestRecreateClass_ExistsError(t *testing.T) {
	client := &MockSchemaClient{ExistsErr: errors.New("connection refused")}
	if err := RecreateClass(context.Background(), client, "Docs"); err == nil {
		t.Fatal("expected error")
	}
	if client.CreatedClass != nil {
		t.Error("Should not create class after a failed existence check")
	}
}

func TestClassName(t *testing.T) {
	cases := map[string]string{
		"my_rag_collection_cohere": "My_rag_collection_cohere",
		"Docs":                     "Docs",
		"kebab-name":               "Kebab_name",
		"":                         "",
	}
	for in, want := range cases {
		if got := ClassName(in); got != want {
			t.Errorf("ClassName(%q) = %q, want %q", in, got, want)
		}
	}
}
