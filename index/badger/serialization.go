package badger

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/docvault/index"
)

// storedChunk is the on-disk representation of one indexed chunk.
type storedChunk struct {
	ID     string
	Text   string
	Page   int
	Vector []float32
}

var vectorSer = ord.NewSliceSer[float32](varint.Float32)

func marshalStoredChunk(c *storedChunk) ([]byte, error) {
	size := ord.String.Size(c.ID) +
		ord.String.Size(c.Text) +
		varint.Int.Size(c.Page) +
		vectorSer.Size(c.Vector)

	bs := make([]byte, size)
	n := ord.String.Marshal(c.ID, bs)
	n += ord.String.Marshal(c.Text, bs[n:])
	n += varint.Int.Marshal(c.Page, bs[n:])
	vectorSer.Marshal(c.Vector, bs[n:])
	return bs, nil
}

func unmarshalStoredChunk(bs []byte) (*storedChunk, error) {
	c := &storedChunk{}

	id, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk id: %w", index.ErrSerializationFailed, err)
	}
	c.ID = id

	text, n1, err := ord.String.Unmarshal(bs[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: chunk text: %w", index.ErrSerializationFailed, err)
	}
	c.Text = text
	n += n1

	page, n2, err := varint.Int.Unmarshal(bs[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: chunk page: %w", index.ErrSerializationFailed, err)
	}
	c.Page = page
	n += n2

	vector, _, err := vectorSer.Unmarshal(bs[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: chunk vector: %w", index.ErrSerializationFailed, err)
	}
	c.Vector = vector

	return c, nil
}
