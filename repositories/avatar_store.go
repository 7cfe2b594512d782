package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"okrproject/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const AvatarBucket = "avatars"

// Avatar is an open avatar file. Callers must Close it.
type Avatar struct {
	io.ReadCloser
	Filename    string
	ContentType string
	Length      int64
}

type AvatarStore interface {
	Upload(ctx context.Context, filename string, data io.Reader, contentType string, uploadedBy primitive.ObjectID) (primitive.ObjectID, error)
	Open(ctx context.Context, fileID primitive.ObjectID) (*Avatar, error)
	Delete(ctx context.Context, fileID primitive.ObjectID) error
}

type gridFSAvatarStore struct {
	bucket *gridfs.Bucket
}

func NewAvatarStore(db *mongo.Database) (AvatarStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(AvatarBucket))
	if err != nil {
		return nil, fmt.Errorf("failed to create GridFS bucket: %w", err)
	}
	return &gridFSAvatarStore{bucket: bucket}, nil
}

func (s *gridFSAvatarStore) Upload(ctx context.Context, filename string, data io.Reader, contentType string, uploadedBy primitive.ObjectID) (primitive.ObjectID, error) {
	uploadOpts := options.GridFSUpload().SetMetadata(bson.M{
		"uploadedBy":  uploadedBy,
		"uploadedAt":  time.Now(),
		"contentType": contentType,
	})

	// Deadlines go on the stream; the bucket is shared by every request.
	stream, err := s.bucket.OpenUploadStream(filename, uploadOpts)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to open GridFS upload stream: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := stream.SetWriteDeadline(deadline); err != nil {
			_ = stream.Abort()
			return primitive.NilObjectID, err
		}
	}
	if _, err := io.Copy(stream, data); err != nil {
		_ = stream.Abort()
		return primitive.NilObjectID, fmt.Errorf("failed to upload avatar to GridFS: %w", err)
	}
	if err := stream.Close(); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to upload avatar to GridFS: %w", err)
	}

	fileID, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected GridFS file id type %T", stream.FileID)
	}
	return fileID, nil
}

func (s *gridFSAvatarStore) Open(ctx context.Context, fileID primitive.ObjectID) (*Avatar, error) {
	stream, err := s.bucket.OpenDownloadStream(fileID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("avatar %s: %w", fileID.Hex(), errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open avatar from GridFS: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := stream.SetReadDeadline(deadline); err != nil {
			_ = stream.Close()
			return nil, err
		}
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if len(file.Metadata) > 0 {
		var meta struct {
			ContentType string `bson:"contentType"`
		}
		if err := bson.Unmarshal(file.Metadata, &meta); err == nil && meta.ContentType != "" {
			contentType = meta.ContentType
		}
	}

	return &Avatar{
		ReadCloser:  stream,
		Filename:    file.Name,
		ContentType: contentType,
		Length:      file.Length,
	}, nil
}

func (s *gridFSAvatarStore) Delete(ctx context.Context, fileID primitive.ObjectID) error {
	err := s.bucket.DeleteContext(ctx, fileID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("avatar %s: %w", fileID.Hex(), errs.ErrNotFound)
	}
	return err
}
