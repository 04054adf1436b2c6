package drivelink

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const longID = "1A7Vd0Zvcfk0TEfMf4bzyrpiRkcOHlsDI"

func quietResolver(buf *bytes.Buffer) *Resolver {
	return New(0, slog.New(slog.NewTextHandler(buf, nil)))
}

func TestGenerateCandidatesPassthrough(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"already uc export", "https://drive.google.com/uc?export=view&id=ABC123"},
		{"already thumbnail", "https://drive.google.com/thumbnail?id=ABC123&sz=w1200"},
		{"already proxied", "https://images1-focus-opensocial.googleusercontent.com/gadgets/proxy?container=focus&url=x"},
		{"non drive", "https://example.com/photo.jpg"},
		{"unmatched drive path", "https://drive.google.com/weird/unknown/path"},
		{"garbage", "not a url at all"},
	}

	var buf bytes.Buffer
	r := quietResolver(&buf)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.GenerateCandidates(tt.input)
			if diff := cmp.Diff([]string{tt.input}, got); diff != "" {
				t.Errorf("GenerateCandidates(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestGenerateCandidatesFileLink(t *testing.T) {
	input := "https://drive.google.com/file/d/" + longID + "/view?usp=sharing"
	want := []string{
		"https://drive.google.com/uc?export=view&id=" + longID,
		"https://drive.google.com/thumbnail?id=" + longID + "&sz=w1200",
		"https://images1-focus-opensocial.googleusercontent.com/gadgets/proxy?container=focus&refresh=2592000&url=https://drive.google.com/uc?export=view&id=" + longID,
		"https://drive.google.com/uc?export=view&id=" + longID + "&sz=w1200",
	}

	got := GenerateCandidates(input)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateCandidatesIsIdempotent(t *testing.T) {
	input := "https://drive.google.com/file/d/" + longID + "/view"
	for _, c := range GenerateCandidates(input) {
		got := GenerateCandidates(c)
		if diff := cmp.Diff([]string{c}, got); diff != "" {
			t.Errorf("re-resolving %q changed it (-want +got):\n%s", c, diff)
		}
	}
}

func TestExtractFileID(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"file link", "https://drive.google.com/file/d/" + longID + "/view?usp=sharing", longID, true},
		{"open by id", "https://drive.google.com/open?id=XYZ789abc", "XYZ789abc", true},
		{"ampersand id", "https://drive.google.com/uc?export=download&id=abc_DEF-1", "abc_DEF-1", true},
		{"folder link", "https://drive.google.com/drive/folders/FOLDERID123", "FOLDERID123", true},
		{"folder with user", "https://drive.google.com/drive/u/0/folders/FOLDERID123?usp=sharing", "FOLDERID123", true},
		{"file wins over id", "https://drive.google.com/file/d/FILEID/view?id=QUERYID", "FILEID", true},
		{"id wins over folder", "https://drive.google.com/drive/folders/FOLDER?id=QUERYID", "QUERYID", true},
		{"no id", "https://drive.google.com/weird/unknown/path", "", false},
		{"empty id", "https://drive.google.com/open?id=", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFileID(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ExtractFileID(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGenerateCandidatesOpenAndFolder(t *testing.T) {
	tests := []struct {
		input string
		id    string
	}{
		{"https://drive.google.com/open?id=XYZ789abc", "XYZ789abc"},
		{"https://drive.google.com/drive/folders/FOLDERID123", "FOLDERID123"},
	}

	for _, tt := range tests {
		got := GenerateCandidates(tt.input)
		if len(got) != 4 {
			t.Fatalf("GenerateCandidates(%q) returned %d candidates, want 4", tt.input, len(got))
		}
		if want := DirectURL(tt.id); got[0] != want {
			t.Errorf("first candidate = %q, want %q", got[0], want)
		}
	}
}

func TestUnmatchedDriveURLLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	r := quietResolver(&buf)

	r.GenerateCandidates("https://drive.google.com/weird/unknown/path")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected a warning log, got: %q", buf.String())
	}

	buf.Reset()
	r.GenerateCandidates("https://example.com/photo.jpg")
	if buf.Len() != 0 {
		t.Errorf("non-Drive URL should not log, got: %q", buf.String())
	}
}

func TestSelectBestMatchesFirstCandidate(t *testing.T) {
	inputs := []string{
		"",
		"https://drive.google.com/uc?export=view&id=ABC123",
		"https://example.com/photo.jpg",
		"https://drive.google.com/file/d/" + longID + "/view?usp=sharing",
		"https://drive.google.com/open?id=XYZ789abc",
		"https://drive.google.com/drive/folders/FOLDERID123",
		"https://drive.google.com/weird/unknown/path",
	}

	var buf bytes.Buffer
	r := quietResolver(&buf)
	for _, in := range inputs {
		if got, want := r.SelectBest(in), r.GenerateCandidates(in)[0]; got != want {
			t.Errorf("SelectBest(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ValidationResult
	}{
		{"empty", "", ValidationResult{Error: ErrEmpty}},
		{"no scheme", "drive.google.com/file/d/" + longID, ValidationResult{Error: ErrFormat}},
		{"bad escape", "https://drive.google.com/%zz", ValidationResult{Error: ErrFormat}},
		{"non drive", "https://example.com/photo.jpg", ValidationResult{Valid: true, Note: NoteNotDrive}},
		{"no id", "https://drive.google.com/weird/unknown/path", ValidationResult{Error: ErrNoFileID}},
		{"short id", "https://drive.google.com/file/d/SHORT123/view", ValidationResult{Error: ErrIDTooShort}},
		{
			"valid",
			"https://drive.google.com/file/d/" + longID + "/view?usp=sharing",
			ValidationResult{Valid: true, FileID: longID, ConvertedURL: DirectURL(longID), Note: NoteValidDrive},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Validate(tt.input)); diff != "" {
				t.Errorf("Validate(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestValidateMinLengthConfigurable(t *testing.T) {
	r := New(5, nil)
	got := r.Validate("https://drive.google.com/file/d/SHORT123/view")
	if !got.Valid || got.FileID != "SHORT123" {
		t.Errorf("Validate with min length 5 = %+v, want valid SHORT123", got)
	}
}

func TestZeroResolverUsable(t *testing.T) {
	var r Resolver
	if got := r.SelectBest("https://drive.google.com/open?id=XYZ789abc"); got != DirectURL("XYZ789abc") {
		t.Errorf("zero Resolver SelectBest = %q", got)
	}
}
