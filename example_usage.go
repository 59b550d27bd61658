package fieldset

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
)

// Example view structs declared through marshal tags
type AuthorView struct {
	ID    uuid.UUID `marshal:"id format:'uuid'"`
	Name  string    `marshal:"name"`
	Email string    `marshal:"email"`
}

type PostView struct {
	ID     int        `marshal:"id"`
	Body   string     `marshal:"body"`
	Author AuthorView `marshal:"author plainkey:'id' plainformat:'uuid'"`
}

type ThreadView struct {
	ID     int        `marshal:"id"`
	Title  string     `marshal:"title"`
	Author AuthorView `marshal:"author plainkey:'id' plainformat:'uuid'"`
	Posts  []PostView `marshal:"posts plainkey:'id'"`
}

func (ThreadView) FieldsetMeta() Meta {
	return Meta{
		DefaultFields: []string{"id", "title", "author"},
		DefaultEmbed:  []string{},
	}
}

func ExampleUsage() {
	author := AuthorView{
		ID:    uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
		Name:  "Ada",
		Email: "ada@example.com",
	}
	thread := ThreadView{
		ID:     7,
		Title:  "Schema declarations",
		Author: author,
		Posts: []PostView{
			{ID: 1, Body: "First!", Author: author},
			{ID: 2, Body: "Second.", Author: author},
		},
	}

	// Example 1: a handler wrapped with tag-declared marshalling
	fmt.Println("=== Example 1: Wrapped Handler ===")

	decorate, err := MarshalOf(ThreadView{})
	if err != nil {
		log.Fatalf("Failed to declare fieldset: %v", err)
	}

	getThread := decorate(func(r *http.Request) (any, error) {
		// Normally a database lookup; selections are already validated
		// by the time this runs.
		return thread, nil
	})

	req1, _ := http.NewRequest("GET", "http://example.com/threads/7?fields=title,posts.body&embedd=posts", nil)
	result, err := getThread(req1)
	if err != nil {
		log.Fatalf("Handler failed: %v", err)
	}
	printJSON(result)

	// Example 2: default selections when the client sends nothing
	fmt.Println("\n=== Example 2: Defaults ===")

	req2, _ := http.NewRequest("GET", "http://example.com/threads/7", nil)
	result, err = getThread(req2)
	if err != nil {
		log.Fatalf("Handler failed: %v", err)
	}
	// Author is not embedded by default, so it renders as its plain key
	printJSON(result)

	// Example 3: invalid selections fail before the handler runs
	fmt.Println("\n=== Example 3: Validation ===")

	req3, _ := http.NewRequest("GET", "http://example.com/threads/7?fields=title,secret", nil)
	if _, err = getThread(req3); err != nil {
		fmt.Printf("Expected selection failure: %v\n", err)
	}

	// Example 4: the same schema built explicitly, marshalled directly
	fmt.Println("\n=== Example 4: Builder Declaration ===")

	authorSchema := NewSchemaBuilder().
		Field("id", &Field{Formatter: UUIDFormatter{}}).
		Field("name", &Field{}).
		Field("email", &Field{}).
		MustBuild()

	threadSchema := NewSchemaBuilder().
		Field("id", &Field{}).
		Field("title", &Field{}).
		Field("author", Nested(authorSchema, "id")).
		Meta(Meta{DefaultEmbed: []string{}}).
		MustBuild()

	output, err := Marshal(threadSchema, thread, NewStringSet("title", "author.name"), NewStringSet("author"))
	if err != nil {
		log.Fatalf("Marshalling failed: %v", err)
	}
	printJSON(output)
}

func printJSON(value any) {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	fmt.Println(string(encoded))
}
