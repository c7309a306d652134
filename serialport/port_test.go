package serialport

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.tigermatt.uk/twelite"
)

// fakeConn has no WriteString method, so io.WriteString always reaches Write.
type fakeConn struct {
	buf      bytes.Buffer
	closed   bool
	writeErr error
}

func (c *fakeConn) Read(bs []byte) (int, error) {
	return c.buf.Read(bs)
}

func (c *fakeConn) Write(bs []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return c.buf.Write(bs)
}

func (c *fakeConn) String() string {
	return c.buf.String()
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestPortSend(t *testing.T) {
	var conn fakeConn
	p := New(&conn, 0)

	cmd, err := twelite.NewChangeOutput(twelite.Digital(1, -1, 0, 1))
	require.NoError(t, err)

	require.NoError(t, p.Send(context.Background(), cmd))
	require.Equal(t, ":788001090DFFFFFFFFFFFFFFFFF9\r\n", conn.String())

	require.NoError(t, p.Close())
	require.True(t, conn.closed)
}

func TestPortSendError(t *testing.T) {
	conn := fakeConn{writeErr: errors.New("unplugged")}
	p := New(&conn, 0)

	cmd, err := twelite.NewChangeOutput()
	require.NoError(t, err)

	err = p.Send(context.Background(), cmd)
	require.Error(t, err)
	require.ErrorIs(t, err, conn.writeErr)

	err = p.WriteLine(context.Background(), cmd.Frame())
	require.ErrorIs(t, err, conn.writeErr)
	require.Empty(t, conn.String())
}

func TestPortPacing(t *testing.T) {
	var conn fakeConn
	p := New(&conn, time.Hour)

	ctx := context.Background()
	require.NoError(t, p.WriteLine(ctx, ":00\r\n"))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	require.Error(t, p.WriteLine(ctx, ":01\r\n"))
	require.Equal(t, ":00\r\n", conn.String())
}
