package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"flightdeck/logbook/internal/constants"
	"flightdeck/logbook/internal/logging"
	"flightdeck/logbook/internal/metrics"
	"flightdeck/logbook/internal/models/dtos"
)

// UploadedFile is one file from the multipart upload, fully read into memory
// (uploads are capped at 15MB per file before this point).
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type fileKind int

const (
	kindCSV fileKind = iota
	kindExcel
	kindScan
)

var mimeKinds = map[string]fileKind{
	"text/csv":   kindCSV,
	"text/plain": kindCSV,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": kindExcel,
	"application/vnd.ms-excel": kindExcel,
	"application/pdf":          kindScan,
	"image/png":                kindScan,
	"image/jpeg":               kindScan,
	"image/gif":                kindScan,
}

// normalizedTable is one uploaded file converted to tab-delimited lines.
type normalizedTable struct {
	Name           string
	Lines          []string
	FromOCR        bool
	DateLayoutHint string
}

// IngestService turns heterogeneous uploaded files into one normalized row
// table with a detected header, plus advisory column suggestions for the
// review UI. Nothing is persisted here.
type IngestService struct {
	classifier Classifier
	metrics    *metrics.MetricsRegistry
}

func NewIngestService(classifier Classifier, metricsReg *metrics.MetricsRegistry) *IngestService {
	return &IngestService{
		classifier: classifier,
		metrics:    metricsReg,
	}
}

// ProcessUpload runs the full ingestion pipeline over the uploaded files.
// Files are processed one at a time, in order, to keep classifier call
// ordering simple and bound concurrent load on that service.
func (s *IngestService) ProcessUpload(ctx context.Context, files []UploadedFile) (*dtos.UploadResponse, error) {
	if len(files) == 0 {
		return nil, &PipelineError{Code: constants.ErrCodeEmptyUpload, Message: constants.GetErrorMessage(constants.ErrCodeEmptyUpload)}
	}
	if len(files) > constants.MaxUploadFiles {
		return nil, &PipelineError{Code: constants.ErrCodeTooManyFiles, Message: constants.GetErrorMessage(constants.ErrCodeTooManyFiles)}
	}

	tables := make([]normalizedTable, 0, len(files))
	for _, f := range files {
		table, err := s.normalizeFile(ctx, f)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *table)
	}

	headerIdx, headers, err := detectHeader(tables[0].Lines)
	if err != nil {
		return nil, err
	}

	dataRows, fromOCR := combineTables(tables, headerIdx)

	layoutHint := ""
	for _, t := range tables {
		if t.DateLayoutHint != "" {
			layoutHint = t.DateLayoutHint
			break
		}
	}

	resolved, err := resolveColumns(headers, dataRows, layoutHint)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil && resolved.DroppedRows > 0 {
		s.metrics.RowsDroppedTotal.Add(float64(resolved.DroppedRows))
	}

	suggestions := s.suggestColumns(ctx, resolved.Headers, resolved.Rows)

	return &dtos.UploadResponse{
		Headers:     resolved.Headers,
		Rows:        resolved.Rows,
		Suggestions: suggestions,
		Catalog:     constants.ColumnCatalog,
		FromOCR:     fromOCR,
		DroppedRows: resolved.DroppedRows,
	}, nil
}

// normalizeFile converts one uploaded file into a tab-delimited table.
func (s *IngestService) normalizeFile(ctx context.Context, f UploadedFile) (*normalizedTable, error) {
	kind, ok := mimeKinds[strings.ToLower(f.ContentType)]
	if !ok {
		return nil, &PipelineError{
			Code:    constants.ErrCodeUnsupportedFileType,
			Message: constants.GetErrorMessage(constants.ErrCodeUnsupportedFileType),
			Detail:  []string{f.Name},
		}
	}

	var (
		table *normalizedTable
		err   error
	)
	switch kind {
	case kindCSV:
		table, err = csvToTable(f)
		s.countFile("csv", err)
	case kindExcel:
		table, err = excelToTable(f)
		s.countFile("excel", err)
	case kindScan:
		table, err = s.scanToTable(ctx, f)
		s.countFile("scan", err)
	}
	if err != nil {
		return nil, err
	}

	// Scanned tables come back from the classifier with the key columns
	// already surfaced; only structured sources need the location pass.
	if kind != kindScan {
		if err := s.ensureKeyColumns(ctx, table); err != nil {
			return nil, err
		}
	}

	return table, nil
}

func (s *IngestService) countFile(kind string, err error) {
	if s.metrics != nil && err == nil {
		s.metrics.FilesIngestedTotal.WithLabelValues(kind).Inc()
	}
}

// csvToTable parses CSV with a real parser so quoted commas survive, then
// re-serializes as tab-delimited lines.
func csvToTable(f UploadedFile) (*normalizedTable, error) {
	reader := csv.NewReader(bytes.NewReader(f.Data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", f.Name, err)
	}

	return &normalizedTable{Name: f.Name, Lines: recordsToLines(records)}, nil
}

// excelToTable emits the first sheet of a workbook as tab-delimited lines.
func excelToTable(f UploadedFile) (*normalizedTable, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(f.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", f.Name, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, &PipelineError{Code: constants.ErrCodeEmptyTable, Message: constants.GetErrorMessage(constants.ErrCodeEmptyTable)}
	}

	records, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheets[0], f.Name, err)
	}

	return &normalizedTable{Name: f.Name, Lines: recordsToLines(records)}, nil
}

// scanToTable sends image/PDF bytes to the classifier and receives a TSV.
// OCR output is flagged as less reliable downstream.
func (s *IngestService) scanToTable(ctx context.Context, f UploadedFile) (*normalizedTable, error) {
	tsv, err := s.classifier.ExtractTable(ctx, f.Name, f.ContentType, f.Data)
	if err != nil {
		return nil, &PipelineError{
			Code:    constants.ErrCodeClassifierFailed,
			Message: constants.GetErrorMessage(constants.ErrCodeClassifierFailed),
			Err:     err,
		}
	}

	lines := splitLines(tsv)
	if len(lines) == 0 {
		return nil, &PipelineError{Code: constants.ErrCodeEmptyTable, Message: constants.GetErrorMessage(constants.ErrCodeEmptyTable)}
	}

	return &normalizedTable{Name: f.Name, Lines: lines, FromOCR: true}, nil
}

// ensureKeyColumns checks that some line in the header scan region mentions
// a date-time and an aircraft column. When either is missing the classifier
// locates them and the two columns are moved to the front of every line.
func (s *IngestService) ensureKeyColumns(ctx context.Context, table *normalizedTable) error {
	limit := constants.HeaderScanLines
	if len(table.Lines) < limit {
		limit = len(table.Lines)
	}

	hasDate, hasAircraft := false, false
	for _, line := range table.Lines[:limit] {
		up := strings.ToUpper(line)
		if strings.Contains(up, "DATE") || strings.Contains(up, "TIME") {
			hasDate = true
		}
		if strings.Contains(up, "AIR") {
			hasAircraft = true
		}
	}
	if hasDate && hasAircraft {
		return nil
	}

	if len(table.Lines) == 0 {
		return &PipelineError{Code: constants.ErrCodeEmptyTable, Message: constants.GetErrorMessage(constants.ErrCodeEmptyTable)}
	}

	headers := strings.Split(table.Lines[0], "\t")
	sample := make([][]string, 0, constants.SuggestionSampleRows)
	for _, line := range table.Lines[1:] {
		if len(sample) == constants.SuggestionSampleRows {
			break
		}
		sample = append(sample, strings.Split(line, "\t"))
	}

	guess, err := s.classifier.GuessKeyColumns(ctx, headers, sample)
	if err != nil {
		return &PipelineError{
			Code:    constants.ErrCodeClassifierFailed,
			Message: constants.GetErrorMessage(constants.ErrCodeClassifierFailed),
			Err:     err,
		}
	}
	if guess.DateIndex < 0 || guess.AircraftIndex < 0 ||
		guess.DateIndex >= len(headers) || guess.AircraftIndex >= len(headers) ||
		guess.DateIndex == guess.AircraftIndex {
		return &PipelineError{
			Code:    constants.ErrCodeClassifierMalformed,
			Message: constants.GetErrorMessage(constants.ErrCodeClassifierMalformed),
		}
	}

	for i, line := range table.Lines {
		cells := strings.Split(line, "\t")
		table.Lines[i] = strings.Join(moveToFront(cells, guess.DateIndex, guess.AircraftIndex), "\t")
	}
	table.DateLayoutHint = guess.DateFormat

	// The located columns keep their original, unrecognizable names; rename
	// them in the header line so downstream detection finds them.
	headerCells := strings.Split(table.Lines[0], "\t")
	if len(headerCells) >= 2 {
		headerCells[0] = constants.ColDate
		headerCells[1] = constants.ColAircraftType
		table.Lines[0] = strings.Join(headerCells, "\t")
	}

	return nil
}

// moveToFront reorders cells so dateIdx and aircraftIdx lead, preserving the
// relative order of everything else. Short rows are returned unchanged.
func moveToFront(cells []string, dateIdx, aircraftIdx int) []string {
	if dateIdx >= len(cells) || aircraftIdx >= len(cells) {
		return cells
	}
	out := make([]string, 0, len(cells))
	out = append(out, cells[dateIdx], cells[aircraftIdx])
	for i, c := range cells {
		if i == dateIdx || i == aircraftIdx {
			continue
		}
		out = append(out, c)
	}
	return out
}

// detectHeader scans the leading lines for the most plausible header row:
// a line mentioning DATE, TIME or AIR with the most non-empty cells.
// Ties go to the earliest line. No candidate is fatal for the whole batch.
func detectHeader(lines []string) (int, []string, error) {
	limit := constants.HeaderScanLines
	if len(lines) < limit {
		limit = len(lines)
	}

	bestIdx := -1
	bestCount := 0
	for i := 0; i < limit; i++ {
		up := strings.ToUpper(lines[i])
		if !strings.Contains(up, "DATE") && !strings.Contains(up, "TIME") && !strings.Contains(up, "AIR") {
			continue
		}
		count := 0
		for _, cell := range strings.Split(lines[i], "\t") {
			if strings.TrimSpace(cell) != "" {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return 0, nil, &PipelineError{
			Code:    constants.ErrCodeNoHeaderRow,
			Message: constants.GetErrorMessage(constants.ErrCodeNoHeaderRow),
		}
	}

	return bestIdx, strings.Split(lines[bestIdx], "\t"), nil
}

// combineTables concatenates the data rows of every table, assuming all
// files share the first table's header row index.
func combineTables(tables []normalizedTable, headerIdx int) ([][]string, bool) {
	var rows [][]string
	fromOCR := false
	for _, t := range tables {
		if t.FromOCR {
			fromOCR = true
		}
		if len(t.Lines) <= headerIdx+1 {
			continue
		}
		for _, line := range t.Lines[headerIdx+1:] {
			if strings.TrimSpace(line) == "" {
				continue
			}
			rows = append(rows, strings.Split(line, "\t"))
		}
	}
	return rows, fromOCR
}

type resolvedTable struct {
	Headers     []string
	Rows        [][]string
	DroppedRows int
}

// resolveColumns normalizes header names, drops empty/duplicate columns,
// validates the two mandatory columns, sizes every row to the header width
// and canonicalizes date cells. Rows whose date cannot be parsed are
// silently dropped.
func resolveColumns(headers []string, rows [][]string, layoutHint string) (*resolvedTable, error) {
	type keptCol struct {
		name string
		idx  int
	}

	seen := make(map[string]struct{})
	kept := make([]keptCol, 0, len(headers))
	for i, h := range headers {
		name := normalizeHeader(h)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		kept = append(kept, keptCol{name: name, idx: i})
	}

	dateCol := -1
	for i, c := range kept {
		if strings.Contains(c.name, "DATE") {
			dateCol = i
			break
		}
	}
	if dateCol < 0 {
		for i, c := range kept {
			if strings.Contains(c.name, "TIME") && !isDurationHeader(c.name) {
				dateCol = i
				break
			}
		}
	}
	if dateCol < 0 {
		return nil, &PipelineError{
			Code:    constants.ErrCodeMissingDateColumn,
			Message: constants.GetErrorMessage(constants.ErrCodeMissingDateColumn),
		}
	}

	aircraftCol := -1
	for i, c := range kept {
		if i == dateCol {
			continue
		}
		if strings.Contains(c.name, "AIRCRAFT") {
			aircraftCol = i
			break
		}
	}
	if aircraftCol < 0 {
		for i, c := range kept {
			if i == dateCol {
				continue
			}
			if strings.Contains(c.name, "AIR") {
				aircraftCol = i
				break
			}
		}
	}
	if aircraftCol < 0 {
		return nil, &PipelineError{
			Code:    constants.ErrCodeMissingAircraft,
			Message: constants.GetErrorMessage(constants.ErrCodeMissingAircraft),
		}
	}

	kept[dateCol].name = constants.ColDate
	kept[aircraftCol].name = constants.ColAircraftType

	outHeaders := make([]string, len(kept))
	for i, c := range kept {
		outHeaders[i] = c.name
	}

	outRows := make([][]string, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		out := make([]string, len(kept))
		for i, c := range kept {
			if c.idx < len(row) {
				out[i] = strings.TrimSpace(row[c.idx])
			}
		}

		parsed, ok := parseFlightDate(out[dateCol], layoutHint)
		if !ok {
			dropped++
			continue
		}
		out[dateCol] = parsed.Format("2006-01-02")

		outRows = append(outRows, out)
	}

	if dropped > 0 {
		logging.Warn("Dropped rows with unparseable dates", "dropped", dropped, "kept", len(outRows))
	}

	return &resolvedTable{Headers: outHeaders, Rows: outRows, DroppedRows: dropped}, nil
}

// normalizeHeader uppercases and converts interior whitespace to underscores.
func normalizeHeader(h string) string {
	h = strings.ToUpper(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

// isDurationHeader filters out hour-count columns like TOTAL_TIME when
// searching for the date column by its TIME token.
func isDurationHeader(name string) bool {
	for _, prefix := range []string{"TOTAL", "FLIGHT", "BLOCK", "SIM", "NIGHT", "DAY"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"2-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"2006/01/02",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

// parseFlightDate parses a date cell to a UTC day-boundary instant. The
// classifier-suggested layout is tried first when present.
func parseFlightDate(s, layoutHint string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	layouts := dateLayouts
	if layoutHint != "" {
		layouts = append([]string{layoutHint}, dateLayouts...)
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.UTC().Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// suggestColumns asks the classifier for advisory rename/removal hints.
// Failures are logged and swallowed; the upload still succeeds without
// suggestions.
func (s *IngestService) suggestColumns(ctx context.Context, headers []string, rows [][]string) []dtos.ColumnSuggestion {
	sample := rows
	if len(sample) > constants.SuggestionSampleRows {
		sample = sample[:constants.SuggestionSampleRows]
	}

	raw, err := s.classifier.SuggestColumns(ctx, headers, sample, constants.ColumnCatalog)
	if err != nil {
		logging.Warn("Column suggestion call failed", "error", err.Error())
		return nil
	}

	seenOld := make(map[string]struct{})
	seenNew := make(map[string]struct{})
	out := make([]dtos.ColumnSuggestion, 0, len(raw))
	for _, sug := range raw {
		if sug.OldName == constants.ColDate || sug.OldName == constants.ColAircraftType {
			continue
		}
		if sug.NewName == constants.ColDate || sug.NewName == constants.ColAircraftType {
			continue
		}
		if _, dup := seenOld[sug.OldName]; dup {
			continue
		}
		if sug.NewName != "" {
			if _, dup := seenNew[sug.NewName]; dup {
				continue
			}
			seenNew[sug.NewName] = struct{}{}
		}
		seenOld[sug.OldName] = struct{}{}
		out = append(out, sug)
	}
	return out
}

func recordsToLines(records [][]string) []string {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		for i, cell := range rec {
			// Tabs inside cells would corrupt the table
			rec[i] = strings.ReplaceAll(cell, "\t", " ")
		}
		lines = append(lines, strings.Join(rec, "\t"))
	}
	return lines
}

func splitLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
