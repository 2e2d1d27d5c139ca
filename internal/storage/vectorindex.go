package storage

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// VectorIndex is an external vector index used in place of (or
// alongside) the in-database pgvector column, for deployments that want
// to externalize nearest-neighbor search at scale.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, embedding []float32) error
	Search(ctx context.Context, embedding []float32, limit int) ([]string, error)
}

// QdrantVectorIndex backs VectorIndex with a Qdrant collection, giving
// the qdrant/go-client dependency a concrete, exercised caller.
type QdrantVectorIndex struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantVectorIndex connects to Qdrant and ensures the collection
// exists at the given vector size.
func NewQdrantVectorIndex(ctx context.Context, host string, port int, collection string, vectorSize uint64) (*QdrantVectorIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("storage: connect qdrant: %w", err)
	}
	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("storage: check qdrant collection: %w", err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     vectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("storage: create qdrant collection: %w", err)
		}
	}
	return &QdrantVectorIndex{client: client, collection: collection}, nil
}

func (q *QdrantVectorIndex) Upsert(ctx context.Context, id string, embedding []float32) error {
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(embedding...),
			},
		},
	})
	return err
}

func (q *QdrantVectorIndex) Search(ctx context.Context, embedding []float32, limit int) ([]string, error) {
	res, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res))
	for _, p := range res {
		ids = append(ids, p.Id.GetUuid())
	}
	return ids, nil
}
