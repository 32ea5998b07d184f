package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
)

// VocabularySource reads open vocabularies from redis sets named
// <prefix>vocab:<kind>. Closed enumerations are never read.
type VocabularySource struct {
	client    goredis.Cmdable
	keyPrefix string
}

// NewVocabularySource creates a source over an existing client.
func NewVocabularySource(client goredis.Cmdable, keyPrefix string) *VocabularySource {
	return &VocabularySource{client: client, keyPrefix: keyPrefix}
}

// Name identifies the source.
func (s *VocabularySource) Name() string {
	return "redis"
}

// SetKey returns the set holding one kind.
func (s *VocabularySource) SetKey(kind vocabulary.Kind) string {
	return s.keyPrefix + "vocab:" + string(kind)
}

// Load reads every open kind in one pipeline. Missing sets are absent from
// the result. Members are sorted since set order is unspecified.
func (s *VocabularySource) Load(ctx context.Context) (map[vocabulary.Kind][]string, error) {
	kinds := openKinds()
	cmds := make([]*goredis.StringSliceCmd, len(kinds))

	_, err := s.client.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for i, kind := range kinds {
			cmds[i] = p.SMembers(ctx, s.SetKey(kind))
		}
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: redis: %w", vocabulary.ErrSourceUnavailable, wrapError(err))
	}

	out := make(map[vocabulary.Kind][]string, len(kinds))
	for i, kind := range kinds {
		members, err := cmds[i].Result()
		if err != nil || len(members) == 0 {
			continue
		}
		sort.Strings(members)
		out[kind] = members
	}
	return out, nil
}

// Save replaces the sets of the given kinds in one transaction.
func (s *VocabularySource) Save(ctx context.Context, values map[vocabulary.Kind][]string) error {
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		for kind, vals := range values {
			if kind.Closed() || !kind.Valid() {
				continue
			}
			key := s.SetKey(kind)
			p.Del(ctx, key)
			if len(vals) == 0 {
				continue
			}
			members := make([]any, len(vals))
			for i, v := range vals {
				members[i] = v
			}
			p.SAdd(ctx, key, members...)
		}
		return nil
	})
	return wrapError(err)
}

func openKinds() []vocabulary.Kind {
	var kinds []vocabulary.Kind
	for _, k := range vocabulary.Kinds() {
		if !k.Closed() {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

var _ vocabulary.Source = (*VocabularySource)(nil)
