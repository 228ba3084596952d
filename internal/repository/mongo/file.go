package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// fileDocument is the stored shape of a file record.
type fileDocument struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	model.File `bson:",inline"`
}

func (d *fileDocument) toModel() *model.File {
	file := d.File
	file.ID = d.ID.Hex()
	return &file
}

// FileStore is the MongoDB implementation of repository.FileRepository.
type FileStore struct {
	coll *mongo.Collection
}

func NewFileStore(db *mongo.Database) *FileStore {
	return &FileStore{coll: db.Collection(filesCollection)}
}

// filter translates the typed filter into a query document. It reports false when the
// filter can never match, e.g. for an ID that is not an ObjectID.
func filter(f repository.FileFilter) (bson.M, bool) {
	query := bson.M{}
	if f.ID != "" {
		id, err := bson.ObjectIDFromHex(f.ID)
		if err != nil {
			return nil, false
		}
		query["_id"] = id
	}
	if f.UserID != "" {
		query["userId"] = f.UserID
	}
	if f.ParentID != "" {
		query["parentId"] = f.ParentID
	}
	if f.Type != "" {
		query["type"] = string(f.Type)
	}
	return query, true
}

func (s *FileStore) Insert(ctx context.Context, file *model.File) error {
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}

	res, err := s.coll.InsertOne(ctx, fileDocument{File: *file})
	if err != nil {
		return err
	}

	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("unexpected inserted id type")
	}
	file.ID = id.Hex()
	return nil
}

func (s *FileStore) FindOne(ctx context.Context, f repository.FileFilter) (*model.File, error) {
	query, ok := filter(f)
	if !ok {
		return nil, repository.ErrFileNotFound
	}

	var doc fileDocument
	err := s.coll.FindOne(ctx, query).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc.toModel(), nil
}

func (s *FileStore) FindMany(ctx context.Context, f repository.FileFilter, skip, limit int) ([]*model.File, error) {
	files := []*model.File{}

	query, ok := filter(f)
	if !ok {
		return files, nil
	}

	opts := options.Find().SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []fileDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	for i := range docs {
		files = append(files, docs[i].toModel())
	}
	return files, nil
}

func (s *FileStore) UpdateOne(ctx context.Context, f repository.FileFilter, patch repository.FilePatch) (*model.File, error) {
	if f.ID == "" {
		return nil, repository.ErrFileNotFound
	}
	if patch.Empty() {
		return s.FindOne(ctx, f)
	}

	query, ok := filter(f)
	if !ok {
		return nil, repository.ErrFileNotFound
	}

	update := bson.M{"$set": bson.M{"isPublic": *patch.IsPublic}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc fileDocument
	err := s.coll.FindOneAndUpdate(ctx, query, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc.toModel(), nil
}

func (s *FileStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.D{})
}
