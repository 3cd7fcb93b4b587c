package db

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-secure-stdlib/base62"
	"github.com/operand/credvault/internal/errors"
)

// NewPublicId creates a new public id with the prefix
func NewPublicId(ctx context.Context, prefix string) (string, error) {
	const op = "db.NewPublicId"
	if prefix == "" {
		return "", errors.New(ctx, errors.InvalidParameter, op, "missing prefix")
	}
	publicId, err := base62.Random(10)
	if err != nil {
		return "", errors.Wrap(ctx, err, op, errors.WithMsg("unable to generate id"))
	}
	return fmt.Sprintf("%s_%s", prefix, publicId), nil
}
