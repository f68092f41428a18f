package ingest

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/risk"
	"github.com/shenikar/crowd_proximity_engine/internal/service"
	"github.com/shenikar/crowd_proximity_engine/internal/service/mocks"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func newTestConsumer(t *testing.T) (*Consumer, *mocks.MockMonitoringService, *bytes.Buffer) {
	ctrl := gomock.NewController(t)
	monitoring := mocks.NewMockMonitoringService(ctrl)

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.DebugLevel)

	c := NewConsumer(monitoring, logger)
	c.now = func() time.Time { return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC) }
	return c, monitoring, &buf
}

func snapshotResult(identity string, score float64) *service.IngestResult {
	return &service.IngestResult{Snapshot: &models.Snapshot{
		MonitoredEntity: models.MonitoredEntity{Identity: identity},
		Assessment:      risk.Assessment{Score: score},
	}}
}

func TestHandleMessage_CameraFromTopic(t *testing.T) {
	c, monitoring, _ := newTestConsumer(t)

	// Ожидания
	monitoring.EXPECT().
		IngestBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *models.ObservationBatch) (*service.IngestResult, error) {
			assert.Equal(t, "gate-3", b.CameraID)
			assert.Equal(t, time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC), b.Timestamp)
			require.Len(t, b.Observations, 2)
			assert.Equal(t, 1.5, b.Observations[1].Weight)
			return snapshotResult(b.CameraID, 12), nil
		}).Times(1)

	// Действие
	res, err := c.HandleMessage(context.Background(), "cameras/gate-3/observations",
		[]byte(`{"observations":[{"x":10,"y":20},{"x":11,"y":21,"weight":1.5}]}`))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, "gate-3", res.Snapshot.Identity)
}

func TestHandleMessage_BodyCameraIDWins(t *testing.T) {
	c, monitoring, _ := newTestConsumer(t)
	ts := time.Date(2026, 4, 30, 10, 0, 0, 0, time.UTC)

	monitoring.EXPECT().
		IngestBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *models.ObservationBatch) (*service.IngestResult, error) {
			assert.Equal(t, "north", b.CameraID)
			assert.True(t, ts.Equal(b.Timestamp))
			return snapshotResult(b.CameraID, 0), nil
		}).Times(1)

	_, err := c.HandleMessage(context.Background(), "cameras/south/observations",
		[]byte(`{"camera_id":"north","timestamp":"2026-04-30T10:00:00Z","observations":[]}`))
	require.NoError(t, err)
}

func TestHandleMessage_InvalidPayload(t *testing.T) {
	c, monitoring, _ := newTestConsumer(t)
	monitoring.EXPECT().IngestBatch(gomock.Any(), gomock.Any()).Times(0)

	_, err := c.HandleMessage(context.Background(), "cameras/x/observations", []byte(`{not json`))

	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestHandleMessage_ServiceError(t *testing.T) {
	c, monitoring, _ := newTestConsumer(t)
	monitoring.EXPECT().
		IngestBatch(gomock.Any(), gomock.Any()).
		Return(nil, service.ErrInvalidBatch).Times(1)

	_, err := c.HandleMessage(context.Background(), "other/topic", []byte(`{"observations":[]}`))

	assert.ErrorIs(t, err, service.ErrInvalidBatch)
}

func TestMessageHandler_LogsOutcome(t *testing.T) {
	c, monitoring, buf := newTestConsumer(t)
	res := snapshotResult("cam-1", 88)
	res.Alert = &models.Alert{ID: 5}
	monitoring.EXPECT().IngestBatch(gomock.Any(), gomock.Any()).Return(res, nil).Times(1)
	monitoring.EXPECT().IngestBatch(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down")).Times(1)

	handler := c.MessageHandler(context.Background())

	handler(nil, fakeMessage{topic: "cameras/cam-1/observations", payload: []byte(`{"observations":[]}`)})
	assert.Contains(t, buf.String(), "Observation batch ingested")
	assert.Contains(t, buf.String(), `"alert_id":5`)

	buf.Reset()
	handler(nil, fakeMessage{topic: "cameras/cam-1/observations", payload: []byte(`{"observations":[]}`)})
	assert.Contains(t, buf.String(), "Failed to ingest observation batch")

	buf.Reset()
	handler(nil, fakeMessage{topic: "cameras/cam-1/observations", payload: []byte(`garbage`)})
	assert.Contains(t, buf.String(), "Dropped malformed MQTT message")
}

func TestMessageHandler_RecoversFromPanic(t *testing.T) {
	c, monitoring, buf := newTestConsumer(t)

	// Ожидания
	monitoring.EXPECT().
		IngestBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *models.ObservationBatch) (*service.IngestResult, error) {
			panic("index out of range")
		}).
		Times(1)

	// Действие
	handler := c.MessageHandler(context.Background())
	assert.NotPanics(t, func() {
		handler(nil, fakeMessage{topic: "cameras/gate-1/observations", payload: []byte(`{"observations":[{"x":1,"y":1}]}`)})
	})

	// Проверки
	assert.Contains(t, buf.String(), "Recovered from panic")
	assert.Contains(t, buf.String(), "index out of range")
}

func TestCameraFromTopic(t *testing.T) {
	assert.Equal(t, "cam-9", cameraFromTopic("cameras/cam-9/observations"))
	assert.Equal(t, "", cameraFromTopic("cameras"))
	assert.Equal(t, "", cameraFromTopic("sensors/cam-9/observations"))
}
