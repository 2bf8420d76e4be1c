package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-service/internal/domain"
)

// Keys:
//
//	trivia:person:{id}    HASH  id name age gender avatar score createdAt updatedAt
//	trivia:people         SET   person ids
//	trivia:question:{id}  STRING question JSON
//	trivia:questions      ZSET  question ids, all scored 0 so ranges are lexicographic
const (
	peopleKey    = "trivia:people"
	questionsKey = "trivia:questions"
)

// incrementScript adds to the score only when the person hash exists, so a missing
// person is never resurrected as a bare score field.
var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
redis.call('HINCRBY', KEYS[1], 'score', ARGV[1])
redis.call('HSET', KEYS[1], 'updatedAt', ARGV[2])
return redis.call('HGETALL', KEYS[1])
`)

// updateScript rewrites the editable profile fields and leaves score alone.
var updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
redis.call('HSET', KEYS[1], 'name', ARGV[1], 'age', ARGV[2], 'gender', ARGV[3], 'avatar', ARGV[4], 'updatedAt', ARGV[5])
return redis.call('HGETALL', KEYS[1])
`)

// Store is a Redis-backed app.Store.
type Store struct {
	client *redis.Client
	clock  func() time.Time
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client, clock: time.Now}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func personKey(id string) string {
	return "trivia:person:" + id
}

func questionKey(id string) string {
	return "trivia:question:" + id
}

func (s *Store) CreatePerson(ctx context.Context, p domain.Person) (domain.Person, error) {
	p.Score = 0
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, personKey(p.ID), personFields(p))
		pipe.SAdd(ctx, peopleKey, p.ID)
		return nil
	})
	if err != nil {
		return domain.Person{}, domain.Unavailable("create person", err)
	}
	return p, nil
}

func (s *Store) GetPerson(ctx context.Context, id string) (domain.Person, error) {
	fields, err := s.client.HGetAll(ctx, personKey(id)).Result()
	if err != nil {
		return domain.Person{}, domain.Unavailable("get person", err)
	}
	if len(fields) == 0 {
		return domain.Person{}, domain.ErrPersonNotFound
	}
	return parsePerson(fields)
}

func (s *Store) UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (domain.Person, error) {
	res, err := updateScript.Run(ctx, s.client, []string{personKey(id)},
		u.Name, u.Age, string(u.Gender), u.Avatar, s.now()).Slice()
	return scriptPerson("update person", res, err)
}

func (s *Store) DeletePerson(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, personKey(id))
		pipe.SRem(ctx, peopleKey, id)
		return nil
	})
	if err != nil {
		return domain.Unavailable("delete person", err)
	}
	if del.Val() == 0 {
		return domain.ErrPersonNotFound
	}
	return nil
}

func (s *Store) IncrementScore(ctx context.Context, id string, delta int) (domain.Person, error) {
	res, err := incrementScript.Run(ctx, s.client, []string{personKey(id)}, delta, s.now()).Slice()
	return scriptPerson("increment score", res, err)
}

func (s *Store) ListPeople(ctx context.Context, filter domain.PeopleFilter, order domain.PeopleSort) ([]domain.Person, error) {
	ids, err := s.client.SMembers(ctx, peopleKey).Result()
	if err != nil {
		return nil, domain.Unavailable("list people", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, personKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, domain.Unavailable("list people", err)
	}

	people := make([]domain.Person, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue // deleted between SMEMBERS and HGETALL
		}
		p, err := parsePerson(fields)
		if err != nil {
			return nil, err
		}
		if filter.Matches(p) {
			people = append(people, p)
		}
	}
	domain.SortPeople(people, order)
	return people, nil
}

func (s *Store) GetQuestionByID(ctx context.Context, id string) (domain.Question, error) {
	raw, err := s.client.Get(ctx, questionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, domain.Unavailable("get question", err)
	}
	var q domain.Question
	if err := json.Unmarshal(raw, &q); err != nil {
		return domain.Question{}, fmt.Errorf("decode question %s: %w", id, err)
	}
	return q, nil
}

func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, questionsKey).Result()
	if err != nil {
		return 0, domain.Unavailable("count questions", err)
	}
	return int(n), nil
}

func (s *Store) GetQuestionAtOffset(ctx context.Context, offset int) (domain.Question, error) {
	if offset < 0 {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	ids, err := s.client.ZRange(ctx, questionsKey, int64(offset), int64(offset)).Result()
	if err != nil {
		return domain.Question{}, domain.Unavailable("question at offset", err)
	}
	if len(ids) == 0 {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return s.GetQuestionByID(ctx, ids[0])
}

// ReplaceQuestions swaps the bank in one MULTI/EXEC block.
func (s *Store) ReplaceQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	oldIDs, err := s.client.ZRange(ctx, questionsKey, 0, -1).Result()
	if err != nil {
		return 0, domain.Unavailable("replace questions", err)
	}

	payloads := make([][]byte, len(questions))
	for i, q := range questions {
		if payloads[i], err = json.Marshal(q); err != nil {
			return 0, fmt.Errorf("encode question %s: %w", q.ID, err)
		}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range oldIDs {
			pipe.Del(ctx, questionKey(id))
		}
		pipe.Del(ctx, questionsKey)
		for i, q := range questions {
			pipe.Set(ctx, questionKey(q.ID), payloads[i], 0)
			pipe.ZAdd(ctx, questionsKey, redis.Z{Score: 0, Member: q.ID})
		}
		return nil
	})
	if err != nil {
		return 0, domain.Unavailable("replace questions", err)
	}
	return len(questions), nil
}

func (s *Store) now() string {
	return s.clock().UTC().Format(time.RFC3339Nano)
}

func personFields(p domain.Person) map[string]interface{} {
	return map[string]interface{}{
		"id":        p.ID,
		"name":      p.Name,
		"age":       p.Age,
		"gender":    string(p.Gender),
		"avatar":    p.Avatar,
		"score":     p.Score,
		"createdAt": p.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt": p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func scriptPerson(op string, res []interface{}, err error) (domain.Person, error) {
	if errors.Is(err, redis.Nil) {
		return domain.Person{}, domain.ErrPersonNotFound
	}
	if err != nil {
		return domain.Person{}, domain.Unavailable(op, err)
	}
	fields := make(map[string]string, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		k, _ := res[i].(string)
		v, _ := res[i+1].(string)
		fields[k] = v
	}
	return parsePerson(fields)
}

func parsePerson(fields map[string]string) (domain.Person, error) {
	p := domain.Person{
		ID:     fields["id"],
		Name:   fields["name"],
		Gender: domain.Gender(fields["gender"]),
		Avatar: fields["avatar"],
	}
	var err error
	if p.Age, err = strconv.Atoi(fields["age"]); err != nil {
		return domain.Person{}, fmt.Errorf("decode person %s age: %w", p.ID, err)
	}
	if p.Score, err = strconv.Atoi(fields["score"]); err != nil {
		return domain.Person{}, fmt.Errorf("decode person %s score: %w", p.ID, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["createdAt"])
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updatedAt"])
	return p, nil
}
