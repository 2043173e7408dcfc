package inmem

import (
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-memdb"
	"github.com/skybi/session-broker/internal/api/broker/session"
)

// expiresIndex indexes sessions by their expiration timestamp.
// Keys are encoded as sign-flipped big endian integers so that the byte order of the index matches the numeric order.
type expiresIndex struct{}

var _ memdb.SingleIndexer = (*expiresIndex)(nil)

func (expiresIndex) FromObject(obj interface{}) (bool, []byte, error) {
	ses, ok := obj.(*session.Session)
	if !ok {
		return false, nil, fmt.Errorf("unexpected object of type %T", obj)
	}
	return true, encodeExpires(ses.Expires), nil
}

func (expiresIndex) FromArgs(args ...interface{}) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("must provide only a single argument")
	}
	val, ok := args[0].(int64)
	if !ok {
		return nil, fmt.Errorf("arg is of type %T; want int64", args[0])
	}
	return encodeExpires(val), nil
}

func encodeExpires(val int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(val)^(1<<63))
	return buf
}
