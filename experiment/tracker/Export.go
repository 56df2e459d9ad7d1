package tracker

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// record is a line of the metrics log
type record struct {
	Tag   string  `json:"tag"`
	Step  int     `json:"step"`
	Value float64 `json:"value"`
}

// LoadScalars reads a metrics log and returns its scalars grouped by
// tag, in the order they were written
func LoadScalars(filename string) (map[string][]Scalar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "loadScalars: could not open metrics log")
	}
	defer file.Close()

	scalars := make(map[string][]Scalar)
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		if len(strings.TrimSpace(scanner.Text())) == 0 {
			continue
		}

		var r record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			return nil, errors.Wrapf(err, "loadScalars: line %d", line)
		}
		if r.Tag == "" {
			return nil, errors.Errorf("loadScalars: line %d: missing tag",
				line)
		}
		scalars[r.Tag] = append(scalars[r.Tag],
			Scalar{Tag: r.Tag, Step: r.Step, Value: r.Value})
	}

	return scalars, errors.Wrap(scanner.Err(), "loadScalars")
}

// CSVName returns the name of the CSV file a tag is exported to
func CSVName(tag string) string {
	return strings.ReplaceAll(tag, "/", "-") + ".csv"
}

// ExportCSV converts the metrics log in dir into one CSV file per tag
// in dir/csv, with columns Step and Value sorted by step. It returns
// the names of the files written.
func ExportCSV(dir string) ([]string, error) {
	scalars, err := LoadScalars(filepath.Join(dir, Filename))
	if err != nil {
		return nil, err
	}

	csvDir := filepath.Join(dir, "csv")
	if err := os.MkdirAll(csvDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "exportCSV")
	}

	tags := make([]string, 0, len(scalars))
	for tag := range scalars {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	written := make([]string, 0, len(tags))
	for _, tag := range tags {
		filename := filepath.Join(csvDir, CSVName(tag))
		if err := writeCSV(filename, scalars[tag]); err != nil {
			return written, errors.Wrapf(err, "exportCSV: tag %v", tag)
		}
		written = append(written, filename)
	}
	return written, nil
}

func writeCSV(filename string, scalars []Scalar) error {
	sort.SliceStable(scalars, func(i, j int) bool {
		return scalars[i].Step < scalars[j].Step
	})

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"Step", "Value"}); err != nil {
		return err
	}
	for _, s := range scalars {
		row := []string{
			strconv.Itoa(s.Step),
			strconv.FormatFloat(s.Value, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
