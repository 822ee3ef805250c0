package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/steemkit/steembridge/pkg/rpc"
	"github.com/steemkit/steembridge/pkg/steem"
	"github.com/steemkit/steembridge/storage"
)

type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(s); f {
	case outputTable, outputJSON, outputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q: use table, json or yaml", s)
	}
}

type capabilityReport struct {
	ID       uint              `json:"id,omitempty" yaml:"id,omitempty"`
	Endpoint string            `json:"endpoint" yaml:"endpoint"`
	APIs     map[string]uint32 `json:"apis" yaml:"apis"`
	Missing  []string          `json:"missing" yaml:"missing"`
	TakenAt  *time.Time        `json:"taken_at,omitempty" yaml:"taken_at,omitempty"`
}

func newCapabilityReport(endpoint string, caps steem.CapabilitySet) capabilityReport {
	report := capabilityReport{
		Endpoint: endpoint,
		APIs:     make(map[string]uint32, caps.Len()),
		Missing:  []string{},
	}
	for api, id := range caps.IDs() {
		report.APIs[string(api)] = id
	}
	for _, api := range caps.Missing() {
		report.Missing = append(report.Missing, string(api))
	}
	return report
}

func renderCapabilities(w io.Writer, format outputFormat, endpoint string, caps steem.CapabilitySet) error {
	if format != outputTable {
		return renderValue(w, format, newCapabilityReport(endpoint, caps))
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(endpoint)
	t.AppendHeader(table.Row{"API", "ID", "Status"})
	t.AppendSeparator()

	for _, api := range caps.Available() {
		id, _ := caps.ID(api)
		t.AppendRow(table.Row{api, id, "available"})
	}
	for _, api := range caps.Missing() {
		t.AppendRow(table.Row{api, "-", "missing"})
	}
	t.Render()
	return nil
}

func renderSnapshots(w io.Writer, format outputFormat, snapshots []storage.SnapshotDTO) error {
	if format != outputTable {
		reports := make([]capabilityReport, 0, len(snapshots))
		for _, snapshot := range snapshots {
			caps, err := snapshot.Capabilities()
			if err != nil {
				return err
			}
			report := newCapabilityReport(snapshot.Endpoint, caps)
			report.ID = snapshot.ID
			report.TakenAt = &snapshot.TakenAt
			reports = append(reports, report)
		}
		return renderValue(w, format, reports)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Endpoint", "Taken At", "APIs"})
	t.AppendSeparator()

	for _, snapshot := range snapshots {
		caps, err := snapshot.Capabilities()
		if err != nil {
			return err
		}
		apis := make([]string, 0, caps.Len())
		for _, api := range caps.Available() {
			apis = append(apis, string(api))
		}
		t.AppendRow(table.Row{snapshot.ID, snapshot.Endpoint, snapshot.TakenAt.Format(time.RFC3339), fmt.Sprint(apis)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, AutoMerge: true},
	})
	t.Render()
	return nil
}

// renderResult prints a raw call result. Tables are drawn for objects and
// arrays of objects; other values are printed as JSON.
func renderResult(w io.Writer, format outputFormat, result json.RawMessage) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(result))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %w", rpc.ErrTransformation, err)
	}

	switch format {
	case outputJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, result, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(w)
		return err
	case outputYAML:
		return renderValue(w, format, normalizeNumbers(v))
	}

	switch val := v.(type) {
	case map[string]any:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Key", "Value"})
		for _, key := range sortedKeys(val) {
			t.AppendRow(table.Row{key, cellValue(val[key])})
		}
		t.Render()
		return nil
	case []any:
		columns, ok := objectColumns(val)
		if !ok {
			break
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		header := make(table.Row, len(columns))
		for i, c := range columns {
			header[i] = c
		}
		t.AppendHeader(header)
		for _, item := range val {
			obj := item.(map[string]any)
			row := make(table.Row, len(columns))
			for i, c := range columns {
				row[i] = cellValue(obj[c])
			}
			t.AppendRow(row)
		}
		t.Render()
		return nil
	}

	_, err := fmt.Fprintln(w, string(result))
	return err
}

func renderValue(w io.Writer, format outputFormat, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// objectColumns returns the union of keys when every item is an object.
func objectColumns(items []any) ([]string, bool) {
	if len(items) == 0 {
		return nil, false
	}

	seen := make(map[string]struct{})
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		for key := range obj {
			seen[key] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	slices.Sort(columns)
	return columns, true
}

func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// normalizeNumbers replaces json.Number with int64, uint64 or float64 so that
// YAML prints numbers unquoted. Values fitting none of them stay strings.
func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for key, item := range val {
			val[key] = normalizeNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeNumbers(item)
		}
		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(val.String(), 10, 64); err == nil {
			return u
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return v
	}
}
