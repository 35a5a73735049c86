package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catapi/internal/auth"
	"catapi/internal/errors"
	"catapi/internal/model"
)

func TestCanAct(t *testing.T) {
	user := &auth.Principal{ID: "u1", Role: model.RoleUser}
	admin := &auth.Principal{ID: "a1", Role: model.RoleAdmin}
	unknownRole := &auth.Principal{ID: "x1", Role: model.Role("root")}

	tests := []struct {
		name      string
		principal *auth.Principal
		op        Operation
		ownerID   string
		wantKind  *errors.Kind
	}{
		{name: "public without principal", principal: nil, op: OpPublic},
		{name: "self without principal", principal: nil, op: OpSelf, wantKind: kind(errors.KindUnauthenticated)},
		{name: "admin without principal", principal: nil, op: OpAdmin, wantKind: kind(errors.KindUnauthenticated)},
		{name: "empty principal id", principal: &auth.Principal{Role: model.RoleAdmin}, op: OpAdmin, wantKind: kind(errors.KindUnauthenticated)},
		{name: "self pre-scoped", principal: user, op: OpSelf},
		{name: "self own resource", principal: user, op: OpSelf, ownerID: "u1"},
		{name: "self foreign resource", principal: user, op: OpSelf, ownerID: "u2", wantKind: kind(errors.KindForbidden)},
		{name: "admin as user", principal: user, op: OpAdmin, wantKind: kind(errors.KindForbidden)},
		{name: "admin as admin", principal: admin, op: OpAdmin},
		{name: "admin with unknown role", principal: unknownRole, op: OpAdmin, wantKind: kind(errors.KindForbidden)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanAct(tt.principal, tt.op, tt.ownerID)
			if tt.wantKind == nil {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, *tt.wantKind, errors.KindOf(err))
		})
	}
}

func TestCanAct_AdminDenialMessage(t *testing.T) {
	err := CanAct(&auth.Principal{ID: "u1", Role: model.RoleUser}, OpAdmin, "")
	assert.EqualError(t, err, MsgNotAdmin)
	assert.Equal(t, 404, errors.MapErrorToHTTP(err).StatusCode)

	err = CanAct(nil, OpAdmin, "")
	assert.EqualError(t, err, MsgTokenNotValid)
	assert.Equal(t, 403, errors.MapErrorToHTTP(err).StatusCode)
}

func kind(k errors.Kind) *errors.Kind { return &k }
