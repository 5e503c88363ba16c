package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Doc-Inf/Finanza/pkg/logger"
	"github.com/Doc-Inf/Finanza/pkg/models"
)

const quotesCollection = "quotes"

// StoredQuote is the persisted shape: fixed scalar columns for the fields
// the rest of the app queries, one schemaless aux document for everything
// volatile. The page's extractable fields drift over time, the aux blob
// absorbs that without schema changes.
type StoredQuote struct {
	Symbol        string    `bson:"symbol" json:"symbol"`
	Name          string    `bson:"name,omitempty" json:"name,omitempty"`
	Price         *float64  `bson:"price,omitempty" json:"price,omitempty"`
	Change        *float64  `bson:"change,omitempty" json:"change,omitempty"`
	ChangePercent *float64  `bson:"change_percent,omitempty" json:"change_percent,omitempty"`
	Aux           bson.M    `bson:"aux,omitempty" json:"aux,omitempty"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`

	// caller-owned fields, never written by the refresh upsert
	PurchasePrice *float64 `bson:"purchase_price,omitempty" json:"purchase_price,omitempty"`
	Tracked       bool     `bson:"tracked,omitempty" json:"tracked,omitempty"`
}

type QuoteRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewQuoteRepo(mongoURL, dbName string) (*QuoteRepo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	coll := client.Database(dbName).Collection(quotesCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "symbol", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tracked", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}

	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Log.Warn().Err(err).Msg("ensure quote indexes")
	}

	return &QuoteRepo{client: client, coll: coll}, nil
}

func (r *QuoteRepo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// Upsert writes the extracted fields for quote.Symbol. Only extractor-owned
// fields are touched; purchase_price and tracked survive every refresh.
func (r *QuoteRepo) Upsert(ctx context.Context, quote *models.Quote) error {
	set := bson.M{
		"symbol":     quote.Symbol,
		"aux":        auxBlob(quote),
		"updated_at": time.Now().UTC(),
	}
	if quote.Name != "" {
		set["name"] = quote.Name
	}
	if quote.Price != nil {
		set["price"] = quote.Price
	}
	if quote.Change != nil {
		set["change"] = quote.Change
	}
	if quote.ChangePercent != nil {
		set["change_percent"] = quote.ChangePercent
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.coll.UpdateOne(ctx, bson.M{"symbol": quote.Symbol}, bson.M{"$set": set}, opts)
	return err
}

func auxBlob(quote *models.Quote) bson.M {
	aux := bson.M{
		"fetched_at": quote.FetchedAt,
	}
	if quote.MarketCloseTime != "" {
		aux["market_close_time"] = quote.MarketCloseTime
	}
	if quote.AfterHours != nil {
		aux["after_hours"] = quote.AfterHours
	}
	if len(quote.RawSnapshot) > 0 {
		aux["raw_snapshot"] = quote.RawSnapshot
	}
	return aux
}

func (r *QuoteRepo) FindBySymbol(ctx context.Context, symbol string) (*StoredQuote, error) {
	var stored StoredQuote
	err := r.coll.FindOne(ctx, bson.M{"symbol": symbol}).Decode(&stored)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListTracked returns the symbols the scheduler should refresh.
func (r *QuoteRepo) ListTracked(ctx context.Context) ([]string, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"tracked": true},
		options.Find().SetProjection(bson.M{"symbol": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var symbols []string
	for cursor.Next(ctx) {
		var doc struct {
			Symbol string `bson:"symbol"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		symbols = append(symbols, doc.Symbol)
	}
	return symbols, cursor.Err()
}

// SetTracked marks or unmarks a symbol for scheduled refresh, creating the
// record on first track.
func (r *QuoteRepo) SetTracked(ctx context.Context, symbol string, tracked bool) error {
	update := bson.M{
		"$set":         bson.M{"tracked": tracked},
		"$setOnInsert": bson.M{"symbol": symbol},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.coll.UpdateOne(ctx, bson.M{"symbol": symbol}, update, opts)
	return err
}

// SetPurchasePrice records the caller-supplied reference price the
// extractor never touches.
func (r *QuoteRepo) SetPurchasePrice(ctx context.Context, symbol string, price float64) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"symbol": symbol},
		bson.M{"$set": bson.M{"purchase_price": price}, "$setOnInsert": bson.M{"symbol": symbol}},
		options.Update().SetUpsert(true))
	return err
}
