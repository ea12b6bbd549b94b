package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_WritesFrame(t *testing.T) {
	tr, remote := newTestTransport(t)

	done := make(chan []byte, 1)
	go func() {
		done <- readExactly(t, remote, 6)
	}()

	require.NoError(t, tr.Send([]byte("#01RD\r")))
	assert.Equal(t, []byte("#01RD\r"), <-done)
	assert.Equal(t, uint64(6), tr.Metrics().BytesSent.Load())
	assert.Equal(t, uint64(1), tr.Metrics().SendCount.Load())
}

func TestSend_DiscardsStaleInput(t *testing.T) {
	tr, remote := newTestTransport(t)

	go func() {
		// A late reply from an earlier exchange.
		mustWrite(t, remote, []byte("*01 PROGM OK\r"))
		cmd := readExactly(t, remote, 6)
		assert.Equal(t, []byte("#01RD\r"), cmd)
		mustWrite(t, remote, []byte("*01 5.23E-07\r"))
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, tr.Send([]byte("#01RD\r")))

	resp, err := tr.Receive(13, '\r', 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("*01 5.23E-07\r"), resp)
}

func TestReceive_FixedLength(t *testing.T) {
	tr, remote := newTestTransport(t)

	go mustWrite(t, remote, []byte("*01 ST OK   \r"))

	resp, err := tr.Receive(13, '\r', 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("*01 ST OK   \r"), resp)
	assert.Equal(t, uint64(13), tr.Metrics().BytesRecv.Load())
}

func TestReceive_ChunkedDelivery(t *testing.T) {
	tr, remote := newTestTransport(t)

	go func() {
		mustWrite(t, remote, []byte("*0"))
		time.Sleep(5 * time.Millisecond)
		mustWrite(t, remote, []byte("1 5.23"))
		time.Sleep(5 * time.Millisecond)
		mustWrite(t, remote, []byte("E-07\r"))
	}()

	resp, err := tr.Receive(13, '\r', 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("*01 5.23E-07\r"), resp)
}

func TestReceive_StopsAtDelimiter(t *testing.T) {
	tr, remote := newTestTransport(t)

	go mustWrite(t, remote, []byte("?01\r"))

	resp, err := tr.Receive(13, '\r', 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("?01\r"), resp)
}

func TestReceive_TimeoutWithoutData(t *testing.T) {
	tr, _ := newTestTransport(t)

	start := time.Now()
	resp, err := tr.Receive(13, '\r', 150*time.Millisecond)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	assert.Equal(t, uint64(1), tr.Metrics().TimeoutCount.Load())
}

func TestReceive_PartialDataAtTimeout(t *testing.T) {
	tr, remote := newTestTransport(t)

	go mustWrite(t, remote, []byte("*01 5.2"))

	resp, err := tr.Receive(13, '\r', 150*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte("*01 5.2"), resp)
}

func TestReceive_ClosedPeer(t *testing.T) {
	tr, remote := newTestTransport(t)
	require.NoError(t, remote.Close())

	_, err := tr.Receive(13, '\r', 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	assert.Equal(t, uint64(1), tr.Metrics().IOErrCount.Load())
}

func TestReceive_InvalidLength(t *testing.T) {
	tr, _ := newTestTransport(t)

	_, err := tr.Receive(0, '\r', 0)
	require.Error(t, err)
}

func TestSend_WriteFailure(t *testing.T) {
	port := &faultyPort{writeErr: errInjected}
	tr := New(port, nil)

	err := tr.Send([]byte("#01RD\r"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, errInjected))
}

func TestSend_ResetFailure(t *testing.T) {
	port := &faultyPort{resetErr: errInjected}
	tr := New(port, nil)

	err := tr.Send([]byte("#01RD\r"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	assert.Empty(t, port.written)
}

func TestReceive_ReadFailure(t *testing.T) {
	port := &faultyPort{readErr: errInjected}
	tr := New(port, nil)

	_, err := tr.Receive(13, '\r', 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
}

func TestReceive_SerialTimeoutSemantics(t *testing.T) {
	// faultyPort.Read mimics a serial port: 0 bytes, nil error on timeout.
	tr := New(&faultyPort{}, nil)

	_, err := tr.Receive(13, '\r', 60*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestClose_Idempotent(t *testing.T) {
	port := &faultyPort{}
	tr := New(port, nil)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.True(t, port.closed)

	assert.ErrorIs(t, tr.Send([]byte("#01RD\r")), ErrClosed)
	_, err := tr.Receive(13, '\r', 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpen_MissingPort(t *testing.T) {
	tr, err := Open("/dev/igm401-does-not-exist", nil)
	require.Error(t, err)
	assert.Nil(t, tr)
	assert.True(t, errors.Is(err, ErrConnection))
}
