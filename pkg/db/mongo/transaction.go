package mongo

import (
	"context"
	"fmt"
	"time"

	apperrors "villaops/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
	opts   *options.TransactionOptions
}

// NewTransactionManager runs callbacks in snapshot/majority transactions.
// A job batch and its booking flag become visible together or not at all.
// maxCommit bounds the server-side commit; zero leaves the server default.
func NewTransactionManager(client *mongo.Client, maxCommit time.Duration) TransactionManager {
	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if maxCommit > 0 {
		opts.SetMaxCommitTime(&maxCommit)
	}
	return &mongoTransactionManager{client: client, opts: opts}
}

// ExecuteTransaction retries on TransientTransactionError and
// UnknownTransactionCommitResult until ctx expires. An error from fn aborts
// the transaction. AppErrors come back unchanged, anything else is wrapped
// with %w so callers can still match their sentinels.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return apperrors.Dependency("mongo session", err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, m.opts)
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return fmt.Errorf("transaction failed: %w", err)
}
