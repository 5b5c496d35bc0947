package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("users-idx").
		Prefix("user:").
		Tag("gender").
		Numeric("age").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "users-idx" {
		t.Errorf("name = %q, want users-idx", idx.Name)
	}
	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "gender" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want gender TAG", idx.Fields[0])
	}
	if idx.Fields[1].Name != "age" || idx.Fields[1].Type != IndexFieldNumeric {
		t.Errorf("field[1] = %+v, want age NUMERIC", idx.Fields[1])
	}
}

func TestIndexBuilder_TagWithOpts(t *testing.T) {
	idx := NewIndex("terms-idx").
		Prefix("user:").
		TagWithOpts("searchTerms", "|", true).
		MustBuild()

	f := idx.Fields[0]
	if f.Separator() != "|" {
		t.Errorf("separator = %q, want |", f.Separator())
	}
	if !f.TagCaseSensitive {
		t.Error("expected case sensitive tag")
	}
}

func TestIndexBuilder_DefaultSeparator(t *testing.T) {
	idx := NewIndex("idx").Tag("t").MustBuild()
	if got := idx.Fields[0].Separator(); got != DefaultTagSeparator {
		t.Errorf("separator = %q, want %q", got, DefaultTagSeparator)
	}
}

func TestIndexBuilder_Sortable(t *testing.T) {
	idx := NewIndex("idx").
		Text("displayName").Sortable().
		Numeric("createdAt").
		MustBuild()

	if !idx.Fields[0].Sortable {
		t.Error("displayName should be sortable")
	}
	if idx.Fields[1].Sortable {
		t.Error("createdAt should not be sortable")
	}
}

func TestIndexBuilder_SortableWithoutFields(t *testing.T) {
	b := NewIndex("idx").Sortable()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error: no fields")
	}
}

func TestIndexDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     IndexDefinition
		wantErr string
	}{
		{"empty name", IndexDefinition{}, "index name is required"},
		{"bad name", IndexDefinition{Name: "a b", Fields: []IndexField{{Name: "x"}}}, "invalid characters"},
		{"no fields", IndexDefinition{Name: "idx"}, "at least one field"},
		{"empty field", IndexDefinition{Name: "idx", Fields: []IndexField{{}}}, "field name is required"},
		{
			"duplicate",
			IndexDefinition{Name: "idx", Fields: []IndexField{{Name: "a"}, {Name: "a"}}},
			"duplicate field name",
		},
		{
			"duplicate alias",
			IndexDefinition{Name: "idx", Fields: []IndexField{{Name: "a"}, {Name: "b", Alias: "a"}}},
			"duplicate field name",
		},
		{
			"long separator",
			IndexDefinition{Name: "idx", Fields: []IndexField{{Name: "t", Type: IndexFieldTag, TagSeparator: "||"}}},
			"single character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_Field(t *testing.T) {
	idx := NewIndex("idx").Tag("gender").Numeric("age").MustBuild()
	idx.Fields[1].Alias = "years"

	if f, ok := idx.Field("gender"); !ok || f.Type != IndexFieldTag {
		t.Errorf("Field(gender) = %+v, %v", f, ok)
	}
	if f, ok := idx.Field("years"); !ok || f.Name != "age" {
		t.Errorf("Field(years) = %+v, %v", f, ok)
	}
	if _, ok := idx.Field("missing"); ok {
		t.Error("Field(missing) should not be found")
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("users").
		Prefix("user:").
		TagWithOpts("searchTerms", "|", false).
		Text("displayName").Sortable().
		Numeric("age").
		MustBuild()

	got := idx.String()
	want := "FT.CREATE users ON HASH PREFIX user: SCHEMA searchTerms TAG displayName TEXT SORTABLE age NUMERIC"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"matchcraft:users:idx", true},
		{"a-b_c", true},
		{"", false},
		{"has space", false},
		{"dot.name", false},
	}
	for _, tc := range tests {
		if got := IsValidIdentifier(tc.s); got != tc.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tc.s, got, tc.want)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := ErrKeyNotFound
	err := &Error{Op: OpGet, Err: inner}
	if err.Error() != "GET: db: key not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != inner {
		t.Error("Unwrap should return inner error")
	}
}
