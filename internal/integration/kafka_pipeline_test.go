//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/trackota-etl/internal/adapter/kafka"
	"github.com/couchcryptid/trackota-etl/internal/analysis"
	"github.com/couchcryptid/trackota-etl/internal/config"
	"github.com/couchcryptid/trackota-etl/internal/dataset"
	"github.com/couchcryptid/trackota-etl/internal/observability"
	"github.com/couchcryptid/trackota-etl/internal/pipeline"
)

const testReportTopic = "test-reports"

// publishedReport holds a deserialized message read from the report topic.
type publishedReport struct {
	Report  analysis.Report
	Key     string
	Headers map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("trackota-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// writeDatasets creates two race folders and one folder without lap data.
func writeDatasets(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	files := map[string]string{
		"barber/race1/lap_times.csv": "NUMBER,LAP_NUMBER,value\n78,1,95.1\n78,2,94.2\n78,3,131.0\n78,4,94.0\n",
		"barber/race1/weather.csv":   "TIME_UTC_SECONDS;AIR_TEMP;TRACK_TEMP;RAIN\n1743861600;21.4;35.0;0\n",
		"barber/race2/lap_times.csv": "NUMBER,LAP_NUMBER,value\n13,1,96.3\n13,2,95.8\n",
		"notes/readme.csv":           "comment\nnothing here\n",
	}
	for name, content := range files {
		path := filepath.Join(base, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return base
}

func readReport(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedReport {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from report topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var report analysis.Report
	require.NoError(t, json.Unmarshal(msg.Value, &report), "unmarshal report")

	return publishedReport{Report: report, Key: string(msg.Key), Headers: headers}
}

// TestPublisherEndToEnd wires the folder scan, report builder and Kafka
// writer and verifies one message per dataset folder reaches the topic.
func TestPublisherEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testReportTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testReportTopic,
	}

	metrics := observability.NewMetricsForTesting()
	locator := dataset.NewLocator(writeDatasets(t), []string{"barber"})
	service := analysis.NewService(locator, analysis.Options{}, discardLogger(), metrics)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(service, pipeline.NewTransformer(service), writer, discardLogger(), metrics,
		pipeline.Options{BatchSize: 2, Concurrency: 2})
	require.NoError(t, p.Run(ctx))
	require.NoError(t, p.CheckReadiness(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testReportTopic,
		GroupID:     fmt.Sprintf("test-reports-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := map[string]publishedReport{}
	// barber itself holds CSVs below it, so it is reported alongside its races.
	for range 4 {
		pr := readReport(ctx, t, consumer)
		received[pr.Key] = pr
	}
	require.Len(t, received, 4)
	assert.Contains(t, received, "barber")

	race1 := received["barber/race1"]
	assert.Equal(t, "barber/race1", race1.Headers["folder"])
	_, err := time.Parse(time.RFC3339, race1.Headers["generated_at"])
	assert.NoError(t, err, "generated_at should be valid RFC3339")
	assert.Equal(t, []float64{95.1, 94.2, 131.0, 94.0}, race1.Report.LapTimes.Times)
	require.NotNil(t, race1.Report.LapTimes.PitWindow)
	assert.Equal(t, 3, race1.Report.LapTimes.PitWindow.Start)
	require.NotNil(t, race1.Report.Weather)
	assert.Equal(t, "21°C, Dry", *race1.Report.Weather)

	race2 := received["barber/race2"]
	assert.Equal(t, []int{1, 2}, race2.Report.LapTimes.Laps)

	notes := received["notes"]
	assert.Equal(t, "schema", notes.Report.Failures["laps"])
	assert.Empty(t, notes.Report.LapTimes.Times)
}
