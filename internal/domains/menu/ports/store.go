package ports

import (
	"context"
	"errors"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
)

// Queryable document fields.
const (
	FieldName  = "name"
	FieldPrice = "price"
)

// ErrUnsupportedField is returned by QueryEqual for fields the store cannot filter on.
var ErrUnsupportedField = errors.New("unsupported query field")

// Unsubscriber detaches a live store feed. Implementations must tolerate repeated calls.
type Unsubscriber interface {
	Unsubscribe()
}

// UnsubscribeFunc adapts a plain function to Unsubscriber.
type UnsubscribeFunc func()

func (f UnsubscribeFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}

// Store is the remote menu document collection.
type Store interface {
	// Subscribe pushes the full current document set of path on every change,
	// starting with the current state. onError fires at most once and ends the
	// feed. The feed also ends when ctx is done.
	Subscribe(ctx context.Context, path string, onSnapshot func([]domain.MenuItem), onError func(error)) Unsubscriber
	// Create writes a new document and returns its generated id.
	Create(ctx context.Context, path string, draft domain.Draft) (string, error)
	// Delete removes a document by id. Unknown ids are not an error.
	Delete(ctx context.Context, path, id string) error
	// QueryEqual returns the documents whose field equals value.
	QueryEqual(ctx context.Context, path, field string, value any) ([]domain.MenuItem, error)
}

// MatchesField reports whether item's field equals value using exact comparison.
func MatchesField(item domain.MenuItem, field string, value any) (bool, error) {
	switch field {
	case FieldName:
		s, ok := value.(string)
		return ok && item.Name == s, nil
	case FieldPrice:
		f, ok := value.(float64)
		return ok && item.Price == f, nil
	default:
		return false, ErrUnsupportedField
	}
}
