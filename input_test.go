package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSet(t *testing.T) {
	key, value := splitSet("set title_text  NEW  FAN ")
	assert.Equal(t, "title_text", key)
	assert.Equal(t, "NEW  FAN", value)

	key, value = splitSet("  set poll_interval 10")
	assert.Equal(t, "poll_interval", key)
	assert.Equal(t, "10", value)
}

func TestSettingValue(t *testing.T) {
	tests := []struct {
		key, raw, want string
	}{
		{"poll_interval", "10", `10`},
		{"use_override", "true", `true`},
		{"audio_volume", "0.3", `0.3`},
		{"title_text", "hello world", `"hello world"`},
		{"sound_file", `C:\sounds\ding.mp3`, `"C:\\sounds\\ding.mp3"`},
		{"recent_color", `"#ff0000"`, `"#ff0000"`},
		{"title_text", "2024", `"2024"`},
		{"title_text", "true", `"true"`},
		{"title_text", "null", `"null"`},
		{"poll_interval", "often", `"often"`},
	}
	for _, tt := range tests {
		t.Run(tt.key+" "+tt.raw, func(t *testing.T) {
			assert.JSONEq(t, tt.want, string(settingValue(tt.key, tt.raw)))
		})
	}
}

func TestSetCmd(t *testing.T) {
	setupTest(t)

	require.True(t, setCmd("poll_interval", "12"))
	assert.Equal(t, 12, getConfig().PollInterval)

	require.True(t, setCmd("title_text", "NEW FAN"))
	assert.Equal(t, "NEW FAN", getConfig().TitleText)

	assert.False(t, setCmd("poll_interval", "often"))
	assert.Equal(t, 12, getConfig().PollInterval)

	require.True(t, setCmd("title_text", "2024"))
	assert.Equal(t, "2024", getConfig().TitleText)
	require.True(t, setCmd("title_text", "true"))
	assert.Equal(t, "true", getConfig().TitleText)
}
