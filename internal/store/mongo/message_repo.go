package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"dmchat/internal/domain"
)

type messageDoc struct {
	ID          int64     `bson:"_id"`
	SenderID    int64     `bson:"sender_id"`
	RecipientID int64     `bson:"recipient_id"`
	Content     string    `bson:"content"`
	CreatedAt   time.Time `bson:"created_at"`
	Read        bool      `bson:"read"`
}

func (d *messageDoc) toDomain() *domain.Message {
	return &domain.Message{
		ID:          d.ID,
		SenderID:    d.SenderID,
		RecipientID: d.RecipientID,
		Content:     d.Content,
		CreatedAt:   d.CreatedAt,
		IsRead:      d.Read,
	}
}

type MessageRepo struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) *MessageRepo {
	return &MessageRepo{db: db, coll: db.Collection(messagesCollection)}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	return r.insert(ctx, m, now())
}

// insert stores m with the given creation time.
func (r *MessageRepo) insert(ctx context.Context, m *domain.Message, at time.Time) error {
	if m.SenderID == m.RecipientID {
		return fmt.Errorf("insert message: %w", domain.ErrSelfMessage)
	}
	id, err := nextID(ctx, r.db, messagesCollection)
	if err != nil {
		return err
	}
	doc := messageDoc{
		ID:          id,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		CreatedAt:   at,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	m.ID = doc.ID
	m.CreatedAt = doc.CreatedAt
	m.IsRead = false
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	var doc messageDoc
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MessageRepo) ListBetween(ctx context.Context, a, b int64) ([]*domain.Message, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "sender_id", Value: a}, {Key: "recipient_id", Value: b}},
		bson.D{{Key: "sender_id", Value: b}, {Key: "recipient_id", Value: a}},
	}}}
	sort := bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	return r.find(ctx, filter, sort)
}

func (r *MessageRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Message, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "sender_id", Value: userID}},
		bson.D{{Key: "recipient_id", Value: userID}},
	}}}
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	return r.find(ctx, filter, sort)
}

func (r *MessageRepo) MarkRead(ctx context.Context, id int64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "read", Value: true}}}},
	)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MessageRepo) find(ctx context.Context, filter, sort bson.D) ([]*domain.Message, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	msgs := make([]*domain.Message, 0, len(docs))
	for i := range docs {
		msgs = append(msgs, docs[i].toDomain())
	}
	return msgs, nil
}
