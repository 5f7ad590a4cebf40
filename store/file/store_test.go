package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-userops/core"
)

const (
	testPublicKey  = "0x04aabbccdd"
	testPrivateKey = "0xdeadbeef01"
	testAddress    = "0x1111111111111111111111111111111111110000"
	testDigest     = "0xfeedface"
	testInitCode   = "0x600060005260206000f3"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(core.StoreConfig{
		Dir:        t.TempDir(),
		UserFile:   "users.json",
		APIKeyFile: "api-keys.json",
	})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func testIdentity(orgID string) core.UserIdentity {
	return core.UserIdentity{
		OrgID:   orgID,
		Address: testAddress,
		UserID:  "user-" + orgID,
		Email:   orgID + "@example.com",
	}
}

func testCredential(t *testing.T, publicKey string) core.Credential {
	t.Helper()
	cred, err := core.NewPendingCredential(publicKey, testPrivateKey, time.Now().UTC())
	if err != nil {
		t.Fatalf("new pending credential: %v", err)
	}
	return cred
}

func testActivationInput(orgID, publicKey string) core.ActivateAPIKeyInput {
	return core.ActivateAPIKeyInput{
		OrgID:                orgID,
		PublicKey:            publicKey,
		DeferredActionDigest: testDigest,
		AccountAddress:       testAddress,
		InitCode:             testInitCode,
	}
}

func TestUpsertUserPurgesOtherOrgs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertUser(ctx, testIdentity("org-a"), testCredential(t, "0x04aa")); err != nil {
		t.Fatalf("upsert org-a: %v", err)
	}
	if err := store.UpsertUser(ctx, testIdentity("org-b"), testCredential(t, "0x04bb")); err != nil {
		t.Fatalf("upsert org-b: %v", err)
	}

	gone, err := store.GetUser(ctx, "org-a")
	if err != nil {
		t.Fatalf("get org-a: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected org-a purged after org-b upsert, got %+v", gone)
	}

	kept, err := store.GetUser(ctx, "org-b")
	if err != nil {
		t.Fatalf("get org-b: %v", err)
	}
	if kept == nil || kept.OrgID != "org-b" {
		t.Fatalf("expected org-b identity, got %+v", kept)
	}
}

func TestUpsertUserAppendsCredential(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertUser(ctx, testIdentity("org-a"), testCredential(t, "0x04aa")); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.UpsertUser(ctx, testIdentity("org-a"), testCredential(t, "0x04bb")); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	latest, err := store.GetLatestAPIKey(ctx, "org-a")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a latest credential")
	}
	if latest.PublicKey != "0x04bb" {
		t.Fatalf("expected last-appended key 0x04bb, got %s", latest.PublicKey)
	}
	if latest.Activated() {
		t.Fatal("fresh credential should be pending")
	}
}

func TestGetUserMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	identity, err := store.GetUser(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if identity != nil {
		t.Fatalf("expected nil identity, got %+v", identity)
	}

	latest, err := store.GetLatestAPIKey(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil credential, got %+v", latest)
	}
}

func TestSetAPIKeyActivatedMutatesOnlyMatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertUser(ctx, testIdentity("org-a"), testCredential(t, "0x04aa")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.UpsertUser(ctx, testIdentity("org-a"), testCredential(t, "0x04bb")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	before, err := os.ReadFile(filepath.Join(filepath.Dir(store.apiKeysPath), "api-keys.json"))
	if err != nil {
		t.Fatalf("read before: %v", err)
	}

	if err := store.SetAPIKeyActivated(ctx, testActivationInput("org-a", "0x04bb")); err != nil {
		t.Fatalf("activate: %v", err)
	}

	latest, err := store.GetLatestAPIKey(ctx, "org-a")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if !latest.Activated() {
		t.Fatal("expected activated latest credential")
	}
	if latest.Activation == nil || latest.Activation.AccountAddress != testAddress {
		t.Fatalf("expected activation artifacts, got %+v", latest.Activation)
	}

	apiKeys, readErr := store.readAPIKeys()
	if readErr != nil {
		t.Fatalf("read api keys: %v", readErr)
	}
	list := apiKeys["org-a"]
	if len(list) != 2 {
		t.Fatalf("expected 2 credentials, got %d", len(list))
	}
	if list[0].PublicKey != "0x04aa" || list[0].Activated() {
		t.Fatalf("first credential should be untouched and pending, got %+v", list[0])
	}
	if len(before) == 0 {
		t.Fatal("expected a populated store file before activation")
	}
}

func TestSetAPIKeyActivatedTerminal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertUser(ctx, testIdentity("org-a"), testCredential(t, testPublicKey)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.SetAPIKeyActivated(ctx, testActivationInput("org-a", testPublicKey)); err != nil {
		t.Fatalf("first activation: %v", err)
	}

	err := store.SetAPIKeyActivated(ctx, testActivationInput("org-a", testPublicKey))
	if !errors.Is(err, core.ErrInvalidCredentialStatusTransition) {
		t.Fatalf("expected terminal-transition error, got %v", err)
	}
}

func TestSetAPIKeyActivatedNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.SetAPIKeyActivated(ctx, testActivationInput("org-missing", testPublicKey))
	if !errors.Is(err, core.ErrAPIKeyNotFound) {
		t.Fatalf("expected not-found for missing org, got %v", err)
	}

	if err := store.UpsertUser(ctx, testIdentity("org-a"), testCredential(t, "0x04aa")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	err = store.SetAPIKeyActivated(ctx, testActivationInput("org-a", "0x04ff"))
	if !errors.Is(err, core.ErrAPIKeyNotFound) {
		t.Fatalf("expected not-found for missing key, got %v", err)
	}
}

func TestUpsertUserSurfacesWriteFailure(t *testing.T) {
	dir := t.TempDir()
	store, err := New(core.StoreConfig{Dir: dir})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	// A directory squatting on the users file path makes the write fail
	// regardless of the user the test runs as.
	if err := os.Mkdir(filepath.Join(dir, "users.json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err = store.UpsertUser(context.Background(), testIdentity("org-a"), testCredential(t, testPublicKey))
	if err == nil {
		t.Fatalf("expected write failure")
	}
	if !strings.Contains(err.Error(), "write store file") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestStoreSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	cfg := core.StoreConfig{Dir: dir, UserFile: "users.json", APIKeyFile: "api-keys.json"}
	ctx := context.Background()

	first, err := New(cfg)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if err := first.UpsertUser(ctx, testIdentity("org-a"), testCredential(t, testPublicKey)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := New(cfg)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	identity, err := second.GetUser(ctx, "org-a")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if identity == nil || identity.OrgID != "org-a" {
		t.Fatalf("expected persisted identity, got %+v", identity)
	}
}
