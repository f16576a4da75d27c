package cart

import (
	"context"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type action string

const (
	actionAdd      action = "add"
	actionUpdate   action = "update"
	actionRemove   action = "remove"
	actionClear    action = "clear"
	actionMerge    action = "merge"
	actionDiscount action = "discount"
)

// reconcile settles local state after every mutating call. Success always
// refetches the server's totals. On failure:
//
//	add              restore the snapshot
//	update, remove   refetch; restore the snapshot if that fails too
//	clear, merge     nothing was applied locally; restore the snapshot
//	discount         refetch regardless
func (s *Store) reconcile(ctx context.Context, act action, snapshot State, callErr error) pkgerrors.Result[State] {
	ctx = s.logg.WithField(ctx, "cart_action", string(act))

	if callErr == nil {
		if act == actionClear {
			s.mutate(func(st *State) {
				st.Items = []Item{}
				st.Discount = nil
				st.recompute()
			})
		}
		if err := s.refresh(ctx); err != nil {
			s.logg.WarnErr(ctx, "cart.refresh_after_mutation_failed", err)
			s.mutate(func(st *State) { st.Status = StatusReady })
		}
		return pkgerrors.Ok(s.State())
	}

	msg := pkgerrors.UserMessage(callErr)
	s.logg.WarnErr(ctx, "cart.mutation_failed", callErr)

	switch act {
	case actionUpdate, actionRemove, actionDiscount:
		if err := s.refresh(ctx); err != nil {
			s.logg.WarnErr(ctx, "cart.resync_failed", err)
			s.replace(snapshot)
		}
	default:
		s.replace(snapshot)
	}

	s.mutate(func(st *State) {
		st.Status = StatusFailed
		st.Err = msg
	})
	return pkgerrors.Fail[State](callErr)
}
