package telegramimpl

import (
	"testing"

	"github.com/w3wave/social-digest/pkg/config"
	"github.com/w3wave/social-digest/pkg/logger"
)

func TestNewWithoutTokenIsNop(t *testing.T) {
	client, err := New(Opts{Config: &config.Config{}, Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := client.(Nop); !ok {
		t.Fatalf("client = %T, want Nop", client)
	}

	id, err := client.SendMessage(1, "run failed")
	if id != 0 || err != nil {
		t.Errorf("SendMessage = (%d, %v)", id, err)
	}
	client.SendMessageToUser("run failed")
}
