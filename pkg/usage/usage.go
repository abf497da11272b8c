package usage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// timeLayout matches the historical probe output so existing CSV files stay
// readable
const timeLayout = "2006.01.02 15:04:05"

// Sample is one metric observation. Threshold carries the capacity the
// value is judged against (total memory, total disk, 100 for CPU percent).
type Sample struct {
	Timestamp time.Time
	Metric    string
	Value     float64
	Threshold float64
}

// Healthy applies the dashboard's traffic-light rules: CPU under 85%,
// memory under 85% of total, disk free above 15% of total.
func (s Sample) Healthy() bool {
	switch {
	case s.Metric == "CPU Usage":
		return s.Value <= 85
	case s.Metric == "Memory Usage":
		return s.Threshold == 0 || s.Value/s.Threshold <= 0.85
	default: // free-space metrics
		return s.Threshold == 0 || s.Value/s.Threshold >= 0.15
	}
}

// Collect takes one snapshot of host CPU, memory, and disk usage
func Collect(now time.Time) ([]Sample, error) {
	var samples []Sample

	cpuPercents, err := cpu.Percent(time.Second, false)
	if err != nil {
		return nil, fmt.Errorf("cpu probe failed: %w", err)
	}
	if len(cpuPercents) > 0 {
		samples = append(samples, Sample{Timestamp: now, Metric: "CPU Usage", Value: cpuPercents[0], Threshold: 100})
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("memory probe failed: %w", err)
	}
	samples = append(samples, Sample{
		Timestamp: now,
		Metric:    "Memory Usage",
		Value:     float64(vm.Used),
		Threshold: float64(vm.Total),
	})

	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("disk probe failed: %w", err)
	}
	for _, part := range partitions {
		du, err := disk.Usage(part.Mountpoint)
		if err != nil {
			continue
		}
		samples = append(samples, Sample{
			Timestamp: now,
			Metric:    fmt.Sprintf("%s Free Space", part.Mountpoint),
			Value:     float64(du.Free),
			Threshold: float64(du.Total),
		})
	}

	return samples, nil
}

// Append writes samples to a pipe-delimited CSV file, adding the header on
// first write. The format is Timestamp|Metric|Value|Threshold.
func Append(path string, samples []Sample) error {
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open usage file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '|'

	if writeHeader {
		if err := w.Write([]string{"Timestamp", "Metric", "Value", "Threshold"}); err != nil {
			return err
		}
	}
	for _, s := range samples {
		record := []string{
			s.Timestamp.Format(timeLayout),
			s.Metric,
			strconv.FormatFloat(s.Value, 'f', -1, 64),
			strconv.FormatFloat(s.Threshold, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// Read parses a usage CSV back into samples. Rows that fail to parse are
// skipped rather than failing the whole file; probe output accumulates for
// months and one mangled row should not blank a dashboard.
func Read(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '|'
	r.FieldsPerRecord = 4

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse usage file: %w", err)
	}

	var samples []Sample
	for i, row := range rows {
		if i == 0 && row[0] == "Timestamp" {
			continue
		}
		ts, err := time.ParseInLocation(timeLayout, row[0], time.Local)
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			continue
		}
		threshold, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			continue
		}
		samples = append(samples, Sample{Timestamp: ts, Metric: row[1], Value: value, Threshold: threshold})
	}
	return samples, nil
}

// Since filters samples to those at or after the cutoff
func Since(samples []Sample, cutoff time.Time) []Sample {
	filtered := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if !s.Timestamp.Before(cutoff) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// Latest returns the most recent sample per metric, in first-seen order
func Latest(samples []Sample) []Sample {
	index := make(map[string]int)
	var latest []Sample
	for _, s := range samples {
		i, ok := index[s.Metric]
		if !ok {
			index[s.Metric] = len(latest)
			latest = append(latest, s)
			continue
		}
		if !s.Timestamp.Before(latest[i].Timestamp) {
			latest[i] = s
		}
	}
	return latest
}
