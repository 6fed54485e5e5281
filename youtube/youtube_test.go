package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare handle", "somechannel", "somechannel"},
		{"at prefix", "@somechannel", "somechannel"},
		{"mixed case lowered", "@SomeChannel", "somechannel"},
		{"full url", "https://www.youtube.com/@somechannel", "somechannel"},
		{"url without www", "https://youtube.com/@somechannel", "somechannel"},
		{"share suffix stripped", "https://www.youtube.com/@somechannel?si=AbCd1234", "somechannel"},
		{"surrounding whitespace", "  @somechannel \n", "somechannel"},
		{"channel id path preserved", "channel/UCaaaaaaaaaaaaaaaaaaaaaa", "channel/UCaaaaaaaaaaaaaaaaaaaaaa"},
		{"channel id url", "https://www.youtube.com/channel/UCaaaaaaaaaaaaaaaaaaaaaa", "channel/UCaaaaaaaaaaaaaaaaaaaaaa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHandle(tt.input))
		})
	}
}

func TestFeedIDs(t *testing.T) {
	assert.Equal(t, "UUaaaaaaaaaaaaaaaaaaaaaa", UploadsFeedID("UCaaaaaaaaaaaaaaaaaaaaaa"))
	assert.Equal(t, "UUMOaaaaaaaaaaaaaaaaaaaaaa", MembersFeedID("UCaaaaaaaaaaaaaaaaaaaaaa"))
}

func TestIsVideoID(t *testing.T) {
	assert.True(t, IsVideoID("dQw4w9WgXcQ"))
	assert.True(t, IsVideoID("a_b-c_d-e_f"))
	assert.False(t, IsVideoID("tooshort"))
	assert.False(t, IsVideoID("muchtoolongid"))
	assert.False(t, IsVideoID("has space!!"))
	assert.False(t, IsVideoID(""))
}

func TestIsChannelID(t *testing.T) {
	assert.True(t, IsChannelID("UCaaaaaaaaaaaaaaaaaaaaaa"))
	assert.False(t, IsChannelID("UUaaaaaaaaaaaaaaaaaaaaaa"))
	assert.False(t, IsChannelID("UCshort"))
	assert.False(t, IsChannelID("somechannel"))
}
