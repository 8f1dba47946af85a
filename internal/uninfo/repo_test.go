package uninfo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&LegacySession{}, &UnifiedIdentity{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestFindOrCreateIdentity_CreatesThenReuses(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	key := Translate(LegacySession{BotID: "b", BotType: "OneBot V11", Platform: PlatformQQ, Level: LevelPrivate, ID1: "10001"})

	first, created, err := repo.FindOrCreateIdentity(ctx, key)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if !created || first.ID == 0 {
		t.Fatalf("expected a new row, got created=%v id=%d", created, first.ID)
	}

	second, created, err := repo.FindOrCreateIdentity(ctx, key)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if created {
		t.Fatalf("expected existing row to be reused")
	}
	if second.ID != first.ID {
		t.Fatalf("expected id %d, got %d", first.ID, second.ID)
	}

	var n int64
	if err := db.Model(&UnifiedIdentity{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 identity row, got %d", n)
	}
}

func TestFindIdentity_StoredBlobs(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	key := Translate(LegacySession{BotID: "b", BotType: "Discord", Platform: PlatformDiscord, Level: LevelChannel, ID1: "u", ID2: "c", ID3: "g"})
	if _, _, err := repo.FindOrCreateIdentity(ctx, key); err != nil {
		t.Fatalf("create: %v", err)
	}

	var nulls int64
	if err := db.Model(&UnifiedIdentity{}).
		Where("parent_scene_data IS NULL AND member_data IS NULL").
		Count(&nulls).Error; err != nil {
		t.Fatalf("count nulls: %v", err)
	}
	if nulls != 1 {
		t.Fatalf("expected parent_scene_data and member_data to be NULL")
	}

	got, err := repo.FindIdentity(ctx, key)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.SceneData == nil || len(got.SceneData) != 0 {
		t.Fatalf("expected empty scene_data, got %v", got.SceneData)
	}
	if got.Key() != key {
		t.Fatalf("key mismatch: %+v != %+v", got.Key(), key)
	}
}

func TestFindIdentity_DistinguishesParent(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	guild := Translate(LegacySession{BotID: "b", BotType: "Kaiheila", Platform: PlatformKaiheila, Level: LevelChannel, ID1: "u", ID3: "g"})
	if _, _, err := repo.FindOrCreateIdentity(ctx, guild); err != nil {
		t.Fatalf("create guild: %v", err)
	}

	channel := Translate(LegacySession{BotID: "b", BotType: "Kaiheila", Platform: PlatformKaiheila, Level: LevelChannel, ID1: "u", ID2: "g", ID3: "g"})
	_, err := repo.FindIdentity(ctx, channel)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for channel key, got %v", err)
	}
}

func TestListSessionIDs_Pages(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s := &LegacySession{BotID: "b", BotType: "Console", Platform: PlatformConsole, Level: LevelPrivate, ID1: fmt.Sprintf("u%d", i)}
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	page, err := repo.ListSessionIDs(ctx, 0, 3)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page) != 3 || page[0] != 1 || page[2] != 3 {
		t.Fatalf("unexpected page 1: %v", page)
	}

	page, err = repo.ListSessionIDs(ctx, page[len(page)-1], 3)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page) != 2 || page[0] != 4 {
		t.Fatalf("unexpected page 2: %v", page)
	}

	n, err := repo.CountSessions(ctx)
	if err != nil || n != 5 {
		t.Fatalf("count: n=%d err=%v", n, err)
	}
}

func TestFindOrCreateIdentity_LosesInsertRace(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&UnifiedIdentity{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	key := Translate(LegacySession{BotID: "b", BotType: "Discord", Platform: PlatformDiscord, Level: LevelChannel, ID1: "u", ID2: "c", ID3: "g"})

	// another writer commits the same key just before our insert
	raced := false
	err = db.Callback().Create().Before("gorm:create").Register("test:concurrent_insert", func(tx *gorm.DB) {
		if raced || tx.Statement.Schema == nil || tx.Statement.Schema.Table != UnifiedIdentityTable {
			return
		}
		raced = true
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO "+UnifiedIdentityTable+" (self_id, adapter, scope, scene_type, scene_id, scene_data, parent_scene_type, parent_scene_id, user_id, user_data) VALUES (?, ?, ?, ?, ?, '{}', ?, ?, ?, '{}')",
			key.SelfID, key.Adapter, string(key.Scope), int(key.Scene.Type), key.Scene.ID, int(key.Scene.ParentType), key.Scene.ParentID, key.UserID)
		if err != nil {
			t.Errorf("concurrent insert: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	u, created, err := NewRepo(db).FindOrCreateIdentity(context.Background(), key)
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if !raced {
		t.Fatalf("expected the concurrent insert to run")
	}
	if created || u.ID == 0 {
		t.Fatalf("expected the other writer's row, got created=%v id=%d", created, u.ID)
	}

	var n int64
	if err := db.Model(&UnifiedIdentity{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 identity row, got %d", n)
	}
}
