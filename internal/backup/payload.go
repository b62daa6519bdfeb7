package backup

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PayloadWriter frames backup sections as a sequence of entities
// {int32 keyLen, key, int32 dataLen, data}.
type PayloadWriter struct {
	w io.Writer
}

// NewPayloadWriter wraps an output stream.
func NewPayloadWriter(w io.Writer) *PayloadWriter {
	return &PayloadWriter{w: w}
}

// WriteEntity appends one section to the payload.
func (pw *PayloadWriter) WriteEntity(key string, data []byte) error {
	if err := binary.Write(pw.w, binary.BigEndian, int32(len(key))); err != nil {
		return fmt.Errorf("failed to write entity header for %s: %w", key, err)
	}
	if _, err := io.WriteString(pw.w, key); err != nil {
		return fmt.Errorf("failed to write entity header for %s: %w", key, err)
	}
	if err := binary.Write(pw.w, binary.BigEndian, int32(len(data))); err != nil {
		return fmt.Errorf("failed to write entity header for %s: %w", key, err)
	}
	if _, err := pw.w.Write(data); err != nil {
		return fmt.Errorf("failed to write entity data for %s: %w", key, err)
	}
	return nil
}

// PayloadReader walks the entities of an incremental backup payload.
type PayloadReader struct {
	r    io.Reader
	size int // size of the current entity's pending data, -1 when consumed
}

// NewPayloadReader wraps an input stream.
func NewPayloadReader(r io.Reader) *PayloadReader {
	return &PayloadReader{r: r, size: -1}
}

// NextHeader advances to the next entity, returning its section id and data
// size. It returns io.EOF at a clean end of the payload; any other error
// means the stream is unreadable and the whole restore call must abort.
func (pr *PayloadReader) NextHeader() (string, int, error) {
	if pr.size >= 0 {
		if err := pr.SkipData(); err != nil {
			return "", 0, err
		}
	}

	var keyLen int32
	if err := binary.Read(pr.r, binary.BigEndian, &keyLen); err != nil {
		if err == io.EOF {
			return "", 0, io.EOF
		}
		return "", 0, fmt.Errorf("failed to read entity header: %w", err)
	}
	if keyLen < 0 {
		return "", 0, fmt.Errorf("invalid entity key length %d", keyLen)
	}

	key := make([]byte, keyLen)
	if _, err := io.ReadFull(pr.r, key); err != nil {
		return "", 0, fmt.Errorf("failed to read entity key: %w", err)
	}

	var dataLen int32
	if err := binary.Read(pr.r, binary.BigEndian, &dataLen); err != nil {
		return "", 0, fmt.Errorf("failed to read entity size for %s: %w", key, err)
	}
	if dataLen < 0 {
		return "", 0, fmt.Errorf("invalid entity size %d for %s", dataLen, key)
	}

	pr.size = int(dataLen)
	return string(key), pr.size, nil
}

// ReadData consumes the current entity's bytes.
func (pr *PayloadReader) ReadData() ([]byte, error) {
	if pr.size < 0 {
		return nil, fmt.Errorf("no pending entity data")
	}
	data := make([]byte, pr.size)
	if _, err := io.ReadFull(pr.r, data); err != nil {
		return nil, fmt.Errorf("failed to read entity data: %w", err)
	}
	pr.size = -1
	return data, nil
}

// SkipData discards the current entity's bytes.
func (pr *PayloadReader) SkipData() error {
	if pr.size < 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, pr.r, int64(pr.size)); err != nil {
		return fmt.Errorf("failed to skip entity data: %w", err)
	}
	pr.size = -1
	return nil
}
