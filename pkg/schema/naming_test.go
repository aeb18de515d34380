package schema

import "testing"

func TestSatelliteNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"join table", JoinTableName("User", "roles"), "UserHasRoles"},
		{"join table keeps inner case", JoinTableName("BlogPost", "relatedTags"), "BlogPostHasRelatedTags"},
		{"list table", ListTableName("User", "tags"), "UserTagsList"},
		{"translation table", TranslationTableName("Article"), "Article_translation"},
		{"pascal", Pascal("phoneNumbers"), "PhoneNumbers"},
		{"camel", Camel("BlogPost"), "blogPost"},
		{"camel empty", Camel(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestJoinColumns(t *testing.T) {
	owner, target := JoinColumns("User", "Role")
	if owner != "user" || target != "role" {
		t.Errorf("JoinColumns = (%q, %q), want (user, role)", owner, target)
	}
}
