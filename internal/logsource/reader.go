package logsource

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"mailwatch/internal/logger"
	"mailwatch/internal/maillog"
	"mailwatch/internal/metrics"
)

// Reader loads the current and rotated Postfix log files and runs the
// parse/aggregate pipeline over their combined content.
type Reader struct {
	dir    string
	prefix string
}

// New creates a Reader over the given log directory. Every file whose
// name starts with prefix belongs to the stream: mail.log, mail.log.1,
// mail.log.2.gz and so on.
func New(dir, prefix string) *Reader {
	return &Reader{dir: dir, prefix: prefix}
}

// Load reads all log files and returns the aggregated transactions.
// Unreadable files are skipped; a missing directory yields an empty
// result. Load never fails.
func (r *Reader) Load() []*maillog.Transaction {
	log := logger.WithComponent("logsource")

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", r.dir).Msg("cannot list log directory")
		return nil
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), r.prefix) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var lines []*maillog.LogLine
	parsed, skipped := 0, 0
	for _, name := range names {
		content, err := r.readFile(filepath.Join(r.dir, name))
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("skipping unreadable log file")
			continue
		}

		for _, raw := range strings.Split(content, "\n") {
			if line := maillog.ParseLine(raw); line != nil {
				lines = append(lines, line)
				parsed++
			} else if raw != "" {
				skipped++
			}
		}
	}

	metrics.LinesParsed.Add(float64(parsed))
	metrics.LinesSkipped.Add(float64(skipped))

	txs := maillog.Aggregate(lines)
	metrics.TransactionsBuilt.Set(float64(len(txs)))

	log.Info().
		Int("files", len(names)).
		Int("parsed", parsed).
		Int("transactions", len(txs)).
		Msg("log files parsed")

	return txs
}

func (r *Reader) readFile(path string) (string, error) {
	if !strings.HasSuffix(path, ".gz") {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		metrics.LogFilesRead.WithLabelValues("plain").Inc()
		return string(data), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", err
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return "", err
	}
	metrics.LogFilesRead.WithLabelValues("gzip").Inc()
	return string(data), nil
}
