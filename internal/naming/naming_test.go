package naming

import "testing"

func TestBaseName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		// Already canonical
		{"plain", "photo.png", "photo.png"},
		{"no extension", "Makefile", "Makefile"},
		{"dotfile", ".env", ".env"},
		{"underscore word", "my_notes.txt", "my_notes.txt"},
		{"digits without underscore", "photo2.png", "photo2.png"},
		{"digits inside stem", "img_2_final.png", "img_2_final.png"},

		// Suffixed
		{"single digit", "photo_2.png", "photo.png"},
		{"many digits", "report_1024.txt", "report.txt"},
		{"rightmost only", "a_1_2.txt", "a_1.txt"},
		{"multi dot keeps inner", "scene.backup_3.unity", "scene.backup.unity"},
		{"uppercase ext", "IMG_0001.JPG", "IMG.JPG"},

		// Not a suffix before the final extension
		{"suffix before inner ext", "archive_2.tar.gz", "archive_2.tar.gz"},
		{"trailing dot", "a_1.", "a_1."},
		{"suffix without ext", "Makefile_2", "Makefile_2"},

		// Dotenv special case
		{"numbered env", "_7.env", ".env"},
		{"numbered env upper", "_12.ENV", ".env"},
		{"named env", "prod_2.env", "prod.env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BaseName(tt.in); got != tt.want {
				t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBaseNameIdempotentOnCanonical(t *testing.T) {
	names := []string{"photo.png", "report_9.json", "_7.env", "notes", ".gitignore", "a_1_2.txt"}
	for _, n := range names {
		canonical := BaseName(n)
		if HasSuffix(canonical) {
			// only the rightmost suffix is stripped per call
			continue
		}
		if got := BaseName(canonical); got != canonical {
			t.Errorf("BaseName(%q) = %q, want it unchanged", canonical, got)
		}
	}
}

func TestHasSuffix(t *testing.T) {
	if !HasSuffix("photo_2.png") {
		t.Error("expected photo_2.png to carry a suffix")
	}
	if HasSuffix("photo.png") {
		t.Error("expected photo.png to be canonical")
	}
	if !HasSuffix("_3.env") {
		t.Error("expected _3.env to carry a suffix")
	}
}

func TestExt(t *testing.T) {
	tests := map[string]string{
		"photo.PNG": ".png",
		".env":      ".env",
		"Makefile":  "",
		"a.tar.GZ":  ".gz",
	}
	for in, want := range tests {
		if got := Ext(in); got != want {
			t.Errorf("Ext(%q) = %q, want %q", in, got, want)
		}
	}
}
