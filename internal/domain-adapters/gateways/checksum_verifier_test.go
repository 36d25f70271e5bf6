package gateways

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestVerifyChecksum(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "verifier-cli-1.307-all.jar")

	content := []byte("Hello, World! This is a test file for checksum verification.")
	if err := os.WriteFile(testFile, content, 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	verifier := NewChecksumVerifier()

	sums := map[string]int{AlgorithmSHA256: 64, AlgorithmSHA1: 40}
	for algorithm, length := range sums {
		length, algorithm := length, algorithm
		t.Run(algorithm, func(t *testing.T) {
			actualSum, err := verifier.CalculateChecksum(testFile, algorithm)
			if err != nil {
				t.Fatalf("CalculateChecksum() error = %v", err)
			}
			if len(actualSum) != length {
				t.Errorf("CalculateChecksum() length = %d, want %d", len(actualSum), length)
			}

			if err := verifier.VerifyChecksum(context.Background(), testFile, algorithm, actualSum); err != nil {
				t.Errorf("VerifyChecksum() with valid checksum error = %v", err)
			}

			withName := actualSum + "  verifier-cli-1.307-all.jar\n"
			if err := verifier.VerifyChecksum(context.Background(), testFile, algorithm, withName); err != nil {
				t.Errorf("VerifyChecksum() with file name suffix error = %v", err)
			}

			invalid := make([]byte, length)
			for i := range invalid {
				invalid[i] = '0'
			}
			if err := verifier.VerifyChecksum(context.Background(), testFile, algorithm, string(invalid)); err == nil {
				t.Error("VerifyChecksum() with invalid checksum should return error")
			}
		})
	}

	t.Run("non-existent file", func(t *testing.T) {
		err := verifier.VerifyChecksum(context.Background(), "/nonexistent/file.jar", AlgorithmSHA256, "abc")
		if err == nil {
			t.Error("VerifyChecksum() with non-existent file should return error")
		}
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		if _, err := verifier.CalculateChecksum(testFile, "md5"); err == nil {
			t.Error("CalculateChecksum() with md5 should return error")
		}
	})

	t.Run("empty checksum", func(t *testing.T) {
		if err := verifier.VerifyChecksum(context.Background(), testFile, AlgorithmSHA256, "  \n"); err == nil {
			t.Error("VerifyChecksum() with empty checksum should return error")
		}
	})
}
