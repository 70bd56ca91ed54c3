package service

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// PageExtractor turns a PDF into its ordered sequence of page texts.
type PageExtractor interface {
	ExtractPages(path string) ([]string, error)
}

// PDFService extracts per-page text from lecture slide PDFs using pdftotext,
// falling back to tesseract OCR for image-only pages.
type PDFService struct {
	ocrLanguages string
}

func NewPDFService(ocrLanguages string) *PDFService {
	if ocrLanguages == "" {
		ocrLanguages = "eng"
	}
	return &PDFService{ocrLanguages: ocrLanguages}
}

// ExtractPages returns exactly one string per page, in page order. A page
// whose text cannot be extracted yields an empty string rather than shifting
// later pages, so record counts always match physical page counts.
func (s *PDFService) ExtractPages(path string) ([]string, error) {
	totalPages, err := getNumPages(path)
	if err != nil {
		return nil, err
	}

	pages := make([]string, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text, err := s.extractText(path, pageNum)
		if err != nil {
			log.Printf("Warning: failed to extract text from %s page %d: %v", filepath.Base(path), pageNum, err)
			continue
		}
		pages[pageNum-1] = s.cleanText(text)
	}
	return pages, nil
}

// extractText tries pdftotext first and OCR second.
func (s *PDFService) extractText(path string, pageNumber int) (string, error) {
	text, err := s.extractTextWithPdftotext(path, pageNumber)
	if err != nil || text == "" {
		text, err = s.extractTextWithTesseract(path, pageNumber)
		if err != nil {
			return "", fmt.Errorf("failed to extract text: %w", err)
		}
	}
	return text, nil
}

func (s *PDFService) extractTextWithPdftotext(path string, pageNumber int) (string, error) {
	cmd := exec.Command("pdftotext",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		path, "-")
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed on page %d: %w", pageNumber, err)
	}
	if trimmed := strings.TrimSpace(out.String()); trimmed != "" {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

func (s *PDFService) extractTextWithTesseract(path string, pageNumber int) (string, error) {
	tempDir, err := os.MkdirTemp("", "silicus-ocr-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	convertCmd := exec.Command("pdftoppm",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-png", path, filepath.Join(tempDir, "page"))
	if err := convertCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to convert page %d to image: %w", pageNumber, err)
	}

	images, err := filepath.Glob(filepath.Join(tempDir, "page-*.png"))
	if err != nil || len(images) == 0 {
		return "", fmt.Errorf("failed to read rendered page image: %w", err)
	}

	ocrCmd := exec.Command("tesseract",
		images[0],
		"stdout",
		"-l", s.ocrLanguages,
		"--oem", "3",
		"--psm", "3",
	)
	var out bytes.Buffer
	ocrCmd.Stdout = &out
	if err := ocrCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	if trimmed := strings.TrimSpace(out.String()); trimmed != "" {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

var pdfinfoPagesRe = regexp.MustCompile(`Pages:\s+(\d+)`)

func getNumPages(path string) (int, error) {
	cmd := exec.Command("pdfinfo", path)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %w", err)
	}

	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		if matches := pdfinfoPagesRe.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}
	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

func (s *PDFService) cleanText(text string) string {
	replacements := map[string]string{
		"\u0000": "",   // Null character
		"\ufffd": "",   // Unicode replacement character
		"\u001b": "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
		"  ":     " ",  // Multiple spaces to single space
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}
	return strings.TrimSpace(cleaned)
}
