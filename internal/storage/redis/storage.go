package redis

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/storage"
)

var errMembersExpired = errors.New("room members expired")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	// cmd is the client itself, or the transaction pipeline inside Batch
	cmd  redis.Cmdable
	cfg  Config
	keys keyspace
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cmd:    client,
		cfg:    cfg,
		keys:   newKeyspace(cfg.KeyPrefix),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Batcher = (*Storage)(nil)
)

// Batch queues every write made by fn on a MULTI/EXEC pipeline so the group
// lands atomically. Reads inside fn see no queued writes.
func (s *Storage) Batch(ctx context.Context, fn func(storage.Storage) error) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return fn(&Storage{client: s.client, cmd: pipe, cfg: s.cfg, keys: s.keys})
	})
	return err
}

func (s *Storage) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.cmd.Set(ctx, key, data, ttl).Err()
}

func (s *Storage) getJSON(ctx context.Context, key string, v any, notFound error) error {
	data, err := s.cmd.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Storage) hsetJSON(ctx context.Context, key, field string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.cmd.HSet(ctx, key, field, data).Err()
}

func (s *Storage) hgetJSON(ctx context.Context, key, field string, v any, notFound error) error {
	data, err := s.cmd.HGet(ctx, key, field).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// Ledger operations

func (s *Storage) GetBalance(ctx context.Context, asset, account model.Address) (model.Amount, error) {
	raw, err := s.cmd.HGet(ctx, s.keys.balance(account), asset.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return model.Amount(v), nil
}

func (s *Storage) SetBalance(ctx context.Context, asset, account model.Address, amount model.Amount) error {
	if amount == 0 {
		return s.cmd.HDel(ctx, s.keys.balance(account), asset.String()).Err()
	}
	return s.cmd.HSet(ctx, s.keys.balance(account), asset.String(), strconv.FormatUint(uint64(amount), 10)).Err()
}

func (s *Storage) SaveAsset(ctx context.Context, asset *model.Asset) error {
	return s.hsetJSON(ctx, s.keys.assets(), asset.Address.String(), asset)
}

func (s *Storage) GetAsset(ctx context.Context, addr model.Address) (*model.Asset, error) {
	var asset model.Asset
	if err := s.hgetJSON(ctx, s.keys.assets(), addr.String(), &asset, model.ErrUnknownAsset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *Storage) ListAssets(ctx context.Context) ([]*model.Asset, error) {
	values, err := s.cmd.HGetAll(ctx, s.keys.assets()).Result()
	if err != nil {
		return nil, err
	}

	assets := make([]*model.Asset, 0, len(values))
	for _, val := range values {
		var asset model.Asset
		if err := json.Unmarshal([]byte(val), &asset); err != nil {
			return nil, err
		}
		assets = append(assets, &asset)
	}
	slices.SortFunc(assets, func(a, b *model.Asset) int {
		return strings.Compare(a.Address.String(), b.Address.String())
	})
	return assets, nil
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	return s.setJSON(ctx, s.keys.account(account.Address), account, 0)
}

func (s *Storage) GetAccount(ctx context.Context, addr model.Address) (*model.Account, error) {
	var account model.Account
	if err := s.getJSON(ctx, s.keys.account(addr), &account, model.ErrAccountNotFound); err != nil {
		return nil, err
	}
	return &account, nil
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	return s.setJSON(ctx, s.keys.user(user.Directory, user.Username), user, 0)
}

func (s *Storage) GetUser(ctx context.Context, directory model.Address, username string) (*model.User, error) {
	var user model.User
	if err := s.getJSON(ctx, s.keys.user(directory, username), &user, model.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) DeleteUser(ctx context.Context, directory model.Address, username string) error {
	return s.cmd.Del(ctx, s.keys.user(directory, username)).Err()
}

// Component state operations

func (s *Storage) SaveDirectory(ctx context.Context, d *model.Directory) error {
	return s.setJSON(ctx, s.keys.directory(d.Address), d, 0)
}

func (s *Storage) GetDirectory(ctx context.Context, addr model.Address) (*model.Directory, error) {
	var d model.Directory
	if err := s.getJSON(ctx, s.keys.directory(addr), &d, model.ErrDirectoryNotFound); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Storage) SaveRouter(ctx context.Context, r *model.Router) error {
	return s.setJSON(ctx, s.keys.router(r.Address), r, 0)
}

func (s *Storage) GetRouter(ctx context.Context, addr model.Address) (*model.Router, error) {
	var r model.Router
	if err := s.getJSON(ctx, s.keys.router(addr), &r, model.ErrRouterNotFound); err != nil {
		return nil, err
	}
	if r.Operators == nil {
		r.Operators = make(map[model.Address]bool)
	}
	if r.Rules == nil {
		r.Rules = make(map[model.Address]bool)
	}
	return &r, nil
}

func (s *Storage) SaveGameRule(ctx context.Context, g *model.GameRule) error {
	return s.setJSON(ctx, s.keys.gameRule(g.Address), g, 0)
}

func (s *Storage) GetGameRule(ctx context.Context, addr model.Address) (*model.GameRule, error) {
	var g model.GameRule
	if err := s.getJSON(ctx, s.keys.gameRule(addr), &g, model.ErrGameRuleNotFound); err != nil {
		return nil, err
	}
	if g.Operators == nil {
		g.Operators = make(map[model.Address]bool)
	}
	if g.RoomCounts == nil {
		g.RoomCounts = make(map[string]uint64)
	}
	return &g, nil
}

// Room operations

// SaveRoom stores the member list under its own key. The room record is
// kept forever; only a closed room's member list ages out, so an expired
// room still reads as closed.
func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	record := *room
	record.Members = nil
	if err := s.setJSON(ctx, s.keys.room(room.Address), &record, 0); err != nil {
		return err
	}

	var ttl time.Duration
	if room.Closed {
		ttl = s.cfg.ClosedRoomTTL
	}
	members := room.Members
	if members == nil {
		members = []string{}
	}
	return s.setJSON(ctx, s.keys.roomMembers(room.Address), members, ttl)
}

func (s *Storage) GetRoom(ctx context.Context, addr model.Address) (*model.Room, error) {
	var room model.Room
	if err := s.getJSON(ctx, s.keys.room(addr), &room, model.ErrRoomNotFound); err != nil {
		return nil, err
	}

	var members []string
	err := s.getJSON(ctx, s.keys.roomMembers(addr), &members, errMembersExpired)
	switch {
	case err == nil:
		room.Members = members
	case !errors.Is(err, errMembersExpired):
		return nil, err
	}
	if room.Members == nil {
		room.Members = []string{}
	}
	return &room, nil
}

// Upgrade slot and deployment operations

func (s *Storage) SaveSlot(ctx context.Context, slot *model.Slot) error {
	return s.setJSON(ctx, s.keys.slot(slot.Address), slot, 0)
}

func (s *Storage) GetSlot(ctx context.Context, addr model.Address) (*model.Slot, error) {
	var slot model.Slot
	if err := s.getJSON(ctx, s.keys.slot(addr), &slot, model.ErrSlotNotFound); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s *Storage) GetNonce(ctx context.Context, deployer model.Address) (uint64, error) {
	raw, err := s.cmd.HGet(ctx, s.keys.nonces(), deployer.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseUint(raw, 10, 64)
}

func (s *Storage) SetNonce(ctx context.Context, deployer model.Address, nonce uint64) error {
	return s.cmd.HSet(ctx, s.keys.nonces(), deployer.String(), strconv.FormatUint(nonce, 10)).Err()
}

func (s *Storage) SaveDeployment(ctx context.Context, d *model.Deployment) error {
	return s.hsetJSON(ctx, s.keys.deployments(), d.Name, d)
}

func (s *Storage) GetDeployment(ctx context.Context, name string) (*model.Deployment, error) {
	var d model.Deployment
	if err := s.hgetJSON(ctx, s.keys.deployments(), name, &d, model.ErrDeploymentNotFound); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Storage) ListDeployments(ctx context.Context) ([]*model.Deployment, error) {
	values, err := s.cmd.HGetAll(ctx, s.keys.deployments()).Result()
	if err != nil {
		return nil, err
	}

	deployments := make([]*model.Deployment, 0, len(values))
	for _, val := range values {
		var d model.Deployment
		if err := json.Unmarshal([]byte(val), &d); err != nil {
			return nil, err
		}
		deployments = append(deployments, &d)
	}
	slices.SortFunc(deployments, func(a, b *model.Deployment) int {
		return strings.Compare(a.Name, b.Name)
	})
	return deployments, nil
}
