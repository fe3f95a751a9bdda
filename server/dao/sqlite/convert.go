package sqlite

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/tree"
	"github.com/google/uuid"
)

// the convertToDB_* and convertFromDB_* functions translate between DAO field
// types and the column types they are stored as.

func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*target = u
	return nil
}

func convertToDB_Role(r dao.Role) int64 {
	return int64(r)
}

func convertFromDB_Role(i int64, target *dao.Role) error {
	r := dao.Role(i)
	if r < dao.Reader || r > dao.Admin {
		return fmt.Errorf("no role has value %d", i)
	}
	*target = r
	return nil
}

func convertToDB_Time(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func convertFromDB_Time(i int64, target *time.Time) error {
	if i == 0 {
		*target = time.Time{}
		return nil
	}
	*target = time.Unix(i, 0)
	return nil
}

// trees are stored as base64 of their binary encoding; a missing tree is the
// empty string.
func convertToDB_Tree(n *tree.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	data, err := n.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func convertFromDB_Tree(s string, target **tree.Node) error {
	if s == "" {
		*target = nil
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decode base64: %w", err)
	}
	n := &tree.Node{}
	if err := n.UnmarshalBinary(data); err != nil {
		return err
	}
	*target = n
	return nil
}
