package service

import (
	"fmt"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
)

func (l *Ledger) requestChange(actor model.Actor, req model.ChangeRequest) (Outcome, error) {
	err := l.mutate(actor, model.PrivChangeRequest, func() ([]repository.Kind, error) {
		l.data.PendingChanges = append(l.data.PendingChanges, req)
		return []repository.Kind{repository.KindPendingChanges}, nil
	})
	if !Applied(err) {
		return "", err
	}
	l.publish(actor, model.EventChangeRequested, req.ID,
		fmt.Sprintf("%s requested to %s", actor.Username, req.Summary()))
	return OutcomePending, err
}

// PendingChanges returns the queue in submission order.
func (l *Ledger) PendingChanges() []model.ChangeRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.ChangeRequest, len(l.data.PendingChanges))
	copy(out, l.data.PendingChanges)
	return out
}

func (l *Ledger) changeIndex(id string) int {
	for i, req := range l.data.PendingChanges {
		if req.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) dropChange(i int) {
	l.data.PendingChanges = append(l.data.PendingChanges[:i], l.data.PendingChanges[i+1:]...)
}

// applyChange performs the request as an administrator would. Callers hold l.mu.
func (l *Ledger) applyChange(req model.ChangeRequest) ([]repository.Kind, error) {
	switch req.Type {
	case model.ChangeAddProduct:
		if req.AddProduct == nil {
			return nil, fmt.Errorf("%w: change request '%s' has no payload", ErrInvalid, req.ID)
		}
		in := *req.AddProduct
		in.Normalize()
		in.Stores = cleanNames(in.Stores)
		if err := validateProductInput(&in); err != nil {
			return nil, err
		}
		return l.applyAddProduct(in)
	default:
		return nil, fmt.Errorf("%w: unsupported change type '%s'", ErrInvalid, req.Type)
	}
}

// ApproveChange applies the request and removes it from the queue. A request
// that cannot be applied stays queued.
func (l *Ledger) ApproveChange(actor model.Actor, id string) (Outcome, error) {
	var req model.ChangeRequest
	err := l.mutate(actor, model.PrivChangeResolve, func() ([]repository.Kind, error) {
		i := l.changeIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: change request '%s' does not exist", ErrNotFound, id)
		}
		req = l.data.PendingChanges[i]
		kinds, err := l.applyChange(req)
		if err != nil {
			return nil, err
		}
		l.dropChange(i)
		return append(kinds, repository.KindPendingChanges), nil
	})
	if !Applied(err) {
		return "", err
	}
	l.publish(actor, model.EventChangeApproved, req.ID,
		fmt.Sprintf("%s approved %s's request to %s", actor.Username, req.RequestedBy, req.Summary()))
	return OutcomeApplied, err
}

// RejectChange discards the request without side effects.
func (l *Ledger) RejectChange(actor model.Actor, id string) (Outcome, error) {
	var req model.ChangeRequest
	err := l.mutate(actor, model.PrivChangeResolve, func() ([]repository.Kind, error) {
		i := l.changeIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: change request '%s' does not exist", ErrNotFound, id)
		}
		req = l.data.PendingChanges[i]
		l.dropChange(i)
		return []repository.Kind{repository.KindPendingChanges}, nil
	})
	if !Applied(err) {
		return "", err
	}
	l.publish(actor, model.EventChangeRejected, req.ID,
		fmt.Sprintf("%s rejected %s's request to %s", actor.Username, req.RequestedBy, req.Summary()))
	return OutcomeApplied, err
}
