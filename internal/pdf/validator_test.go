package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidator_ValidateFile(t *testing.T) {
	tempDir := t.TempDir()

	validPath := filepath.Join(tempDir, "RfS.PDF")
	if err := os.WriteFile(validPath, []byte("%PDF-1.4\n"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	noExtPath := filepath.Join(tempDir, "RfS_SECI_2024")
	if err := os.WriteFile(noExtPath, []byte("%PDF-1.4\n"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	emptyPath := filepath.Join(tempDir, "empty.pdf")
	if err := os.WriteFile(emptyPath, nil, 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	largePath := filepath.Join(tempDir, "large.pdf")
	if err := os.WriteFile(largePath, make([]byte, 101), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	dirPath := filepath.Join(tempDir, "dir.pdf")
	if err := os.Mkdir(dirPath, 0o755); err != nil {
		t.Fatalf("Failed to create test dir: %v", err)
	}

	validator := NewValidator(100)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "valid upper case extension", path: validPath, wantErr: false},
		{name: "empty path", path: "", wantErr: true},
		{name: "missing file", path: filepath.Join(tempDir, "nope.pdf"), wantErr: true},
		{name: "no extension", path: noExtPath, wantErr: false},
		{name: "empty file", path: emptyPath, wantErr: true},
		{name: "too large", path: largePath, wantErr: true},
		{name: "directory", path: dirPath, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFile() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
