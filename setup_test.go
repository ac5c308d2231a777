package netislands

import (
	"io"
	"os"
	"testing"

	"github.com/dep2p/go-netislands/internal/util/logger"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}
