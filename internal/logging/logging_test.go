package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unetra-global/member-portal-sub000/internal/config"
)

func TestConfigureJSON(t *testing.T) {
	logger := logrus.New()
	var buf bytes.Buffer
	configure(logger, config.LogConfig{Level: "WARN", Format: "json"}, &buf)

	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("dropped")
	logger.WithField("member_id", "m-1").Warn("kept")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "m-1", line["member_id"])
}

func TestConfigureTextAndUnknownLevel(t *testing.T) {
	logger := logrus.New()
	var buf bytes.Buffer
	configure(logger, config.LogConfig{Level: "chatty", Format: "text"}, &buf)

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
