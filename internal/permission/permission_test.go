package permission

import "testing"

var (
	anon    = Anonymous()
	curator = Actor{Username: "ana", Groups: []string{"curators"}}
	other   = Actor{Username: "bo", Groups: []string{"breeders"}}
	loner   = Actor{Username: "cy"}
	admin   = Actor{Username: "root", Groups: []string{"admin"}}
	staff   = Actor{Username: "st", IsStaff: true}
)

func TestIsAdmin(t *testing.T) {
	p := DefaultPolicy()
	for _, tc := range []struct {
		actor Actor
		want  bool
	}{
		{anon, false},
		{curator, false},
		{admin, true},
		{staff, true},
		{Actor{Groups: []string{"admin"}}, false},
	} {
		if got := p.IsAdmin(tc.actor); got != tc.want {
			t.Fatalf("IsAdmin(%+v) = %v, want %v", tc.actor, got, tc.want)
		}
	}
	custom := Policy{AdminGroup: "curators"}
	if !custom.IsAdmin(curator) || custom.IsAdmin(admin) {
		t.Fatalf("admin group must follow the policy")
	}
}

func TestObjectPredicates(t *testing.T) {
	p := DefaultPolicy()
	private := Object{Group: "curators"}
	public := Object{Group: "curators", IsPublic: true}
	cases := []struct {
		name  string
		actor Actor
		obj   Object
		read  bool
		write bool
		patch bool
	}{
		{"anon private", anon, private, false, false, false},
		{"anon public", anon, public, true, false, false},
		{"owner private", curator, private, true, true, false},
		{"owner public", curator, public, true, false, false},
		{"stranger private", other, private, false, false, false},
		{"stranger public", other, public, true, false, false},
		{"admin private", admin, private, true, true, true},
		{"admin public", admin, public, true, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.CanRetrieve(tc.actor, tc.obj); got != tc.read {
				t.Fatalf("retrieve = %v, want %v", got, tc.read)
			}
			if got := p.CanUpdate(tc.actor, tc.obj); got != tc.write {
				t.Fatalf("update = %v, want %v", got, tc.write)
			}
			if got := p.CanDestroy(tc.actor, tc.obj); got != tc.write {
				t.Fatalf("destroy = %v, want %v", got, tc.write)
			}
			if got := p.CanPartialUpdate(tc.actor, tc.obj); got != tc.patch {
				t.Fatalf("partial update = %v, want %v", got, tc.patch)
			}
		})
	}
}

func TestCreatePredicates(t *testing.T) {
	p := DefaultPolicy()
	if p.CanCreate(curator) || !p.CanCreate(admin) {
		t.Fatalf("create is admin only")
	}
	if p.CanCreateAccessionSet(curator) {
		t.Fatalf("default policy restricts set creation to admins")
	}
	open := Policy{AccessionSetCreators: CreatorsAuthenticated}
	if !open.CanCreateAccessionSet(curator) {
		t.Fatalf("authenticated actor with a group may create sets")
	}
	if open.CanCreateAccessionSet(loner) || open.CanCreateAccessionSet(anon) {
		t.Fatalf("actors without a group may not create sets")
	}
}

func TestFilter(t *testing.T) {
	items := []Object{
		{Group: "curators"},
		{Group: "breeders"},
		{Group: "breeders", IsPublic: true},
	}
	id := func(o Object) Object { return o }
	p := DefaultPolicy()
	if got := Filter(p, anon, items, id); len(got) != 1 {
		t.Fatalf("anonymous sees public only, got %v", got)
	}
	if got := Filter(p, curator, items, id); len(got) != 2 {
		t.Fatalf("owner sees own and public, got %v", got)
	}
	if got := Filter(p, admin, items, id); len(got) != 3 {
		t.Fatalf("admin sees everything, got %v", got)
	}
	visible := p.Visible(other)
	if !visible("breeders", false) || visible("curators", false) {
		t.Fatalf("unexpected visibility func result")
	}
}
