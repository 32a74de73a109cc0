package access

import (
	"testing"

	"github.com/volatiletech/null/v8"
)

func TestActor_Can(t *testing.T) {
	owned := null.StringFrom("u1")
	foreign := null.StringFrom("u2")
	orphan := null.String{} // owning account removed

	member := Actor{ID: "u1", Role: RoleMember, Authenticated: true}
	moderator := Actor{ID: "m1", Role: RoleModerator, Authenticated: true}
	staff := Actor{ID: "s1", Role: RoleMember, Staff: true, Authenticated: true}
	anonymous := Anonymous()

	tests := []struct {
		name   string
		actor  Actor
		action Action
		owner  null.String
		want   bool
	}{
		{name: "anonymous can do nothing", actor: anonymous, action: ActionRead, owner: owned, want: false},

		{name: "member creates", actor: member, action: ActionCreate, owner: null.String{}, want: true},
		{name: "member reads anything", actor: member, action: ActionRead, owner: foreign, want: true},
		{name: "member updates own", actor: member, action: ActionUpdate, owner: owned, want: true},
		{name: "member cannot update foreign", actor: member, action: ActionUpdate, owner: foreign, want: false},
		{name: "member cannot update orphaned", actor: member, action: ActionUpdate, owner: orphan, want: false},
		{name: "member deletes own", actor: member, action: ActionDelete, owner: owned, want: true},
		{name: "member cannot delete foreign", actor: member, action: ActionDelete, owner: foreign, want: false},

		{name: "moderator never creates", actor: moderator, action: ActionCreate, owner: null.String{}, want: false},
		{name: "moderator reads anything", actor: moderator, action: ActionRead, owner: foreign, want: true},
		{name: "moderator updates anything", actor: moderator, action: ActionUpdate, owner: foreign, want: true},
		{name: "moderator updates orphaned", actor: moderator, action: ActionUpdate, owner: orphan, want: true},
		{name: "moderator never deletes", actor: moderator, action: ActionDelete, owner: foreign, want: false},
		{name: "moderator cannot delete own either", actor: moderator, action: ActionDelete, owner: null.StringFrom("m1"), want: false},

		{name: "staff creates", actor: staff, action: ActionCreate, owner: null.String{}, want: true},
		{name: "staff updates anything", actor: staff, action: ActionUpdate, owner: foreign, want: true},
		{name: "staff deletes anything", actor: staff, action: ActionDelete, owner: foreign, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.actor.Can(tt.action, tt.owner); got != tt.want {
				t.Errorf("Can(%v, %v) = %v, want %v", tt.action, tt.owner, got, tt.want)
			}
		})
	}
}

func TestScopes(t *testing.T) {
	member := Actor{ID: "u1", Role: RoleMember, Authenticated: true}
	moderator := Actor{ID: "m1", Role: RoleModerator, Authenticated: true}
	staff := Actor{ID: "s1", Role: RoleMember, Staff: true, Authenticated: true}
	anonymous := Anonymous()

	tests := []struct {
		name        string
		actor       Actor
		wantCatalog Scope
		wantOwned   Scope
	}{
		{name: "anonymous", actor: anonymous, wantCatalog: ScopeNone, wantOwned: ScopeNone},
		{name: "member", actor: member, wantCatalog: ScopeAll, wantOwned: ScopeOwned},
		{name: "moderator", actor: moderator, wantCatalog: ScopeAll, wantOwned: ScopeAll},
		{name: "staff", actor: staff, wantCatalog: ScopeAll, wantOwned: ScopeAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CatalogScope(tt.actor); got != tt.wantCatalog {
				t.Errorf("CatalogScope() = %v, want %v", got, tt.wantCatalog)
			}
			if got := OwnedScope(tt.actor); got != tt.wantOwned {
				t.Errorf("OwnedScope() = %v, want %v", got, tt.wantOwned)
			}
		})
	}
}
