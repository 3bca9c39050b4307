package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/minirpc/protocol"
)

func TestRecover(t *testing.T) {
	t.Run("passes through normal operations", func(t *testing.T) {
		op := decodeRequest(`{"method":"m","params":[]}`)
		if err := Recover()(wireHandler)(context.Background(), op); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if op.Message == nil {
			t.Fatal("expected decoded message")
		}
	})

	t.Run("passes through errors", func(t *testing.T) {
		expectedErr := errors.New("handler error")
		handler := HandlerFunc(func(ctx context.Context, op *Operation) error {
			return expectedErr
		})

		err := Recover()(handler)(context.Background(), decodeRequest(`{}`))
		if !errors.Is(err, expectedErr) {
			t.Errorf("error = %v, want %v", err, expectedErr)
		}
	})

	t.Run("catches panic with string", func(t *testing.T) {
		handler := HandlerFunc(func(ctx context.Context, op *Operation) error {
			panic("something went wrong")
		})

		err := Recover()(handler)(context.Background(), decodeRequest(`{}`))
		if err == nil {
			t.Fatal("expected error from panic")
		}

		var rpcErr protocol.Error
		if !errors.As(err, &rpcErr) {
			t.Fatalf("expected protocol.Error, got %T", err)
		}
		if rpcErr.Code != protocol.InternalError {
			t.Errorf("error code = %d, want %d", rpcErr.Code, protocol.InternalError)
		}
		if !strings.Contains(rpcErr.Message, "decode.request") || !strings.Contains(rpcErr.Message, "something went wrong") {
			t.Errorf("message = %q", rpcErr.Message)
		}
	})

	t.Run("catches panic with error", func(t *testing.T) {
		handler := HandlerFunc(func(ctx context.Context, op *Operation) error {
			panic(errors.New("boom"))
		})

		err := Recover()(handler)(context.Background(), &Operation{Direction: Encode, Kind: KindResponse})
		if protocol.AsError(err).Code != protocol.InternalError {
			t.Errorf("error = %v, want internal error", err)
		}
		if !strings.Contains(err.Error(), "encode.response: boom") {
			t.Errorf("error = %q", err.Error())
		}
	})

	t.Run("catches panic with other value", func(t *testing.T) {
		handler := HandlerFunc(func(ctx context.Context, op *Operation) error {
			panic(42)
		})

		err := Recover()(handler)(context.Background(), decodeRequest(`{}`))
		if err == nil || !strings.Contains(err.Error(), "42") {
			t.Errorf("error = %v, want panic value in message", err)
		}
	})
}

func TestRecoverWithHandler(t *testing.T) {
	var recovered any
	custom := func(ctx context.Context, op *Operation, panicVal any) error {
		recovered = panicVal
		return errors.New("custom")
	}

	handler := HandlerFunc(func(ctx context.Context, op *Operation) error {
		panic("custom panic")
	})

	err := RecoverWithHandler(custom)(handler)(context.Background(), decodeRequest(`{}`))
	if err == nil || err.Error() != "custom" {
		t.Errorf("error = %v, want custom", err)
	}
	if recovered != "custom panic" {
		t.Errorf("recovered = %v, want %q", recovered, "custom panic")
	}
}
