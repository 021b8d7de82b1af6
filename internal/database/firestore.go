// reachout - Contact list and bulk messaging dashboard
// Copyright (C) 2026  reachout contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

package database

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jredh-dev/reachout/internal/contacts"
)

// Firestore stores contacts as documents keyed by id. Phone uniqueness is
// kept by a companion collection whose document ids are the phone numbers;
// both documents are created in one transaction, so a taken phone fails the
// whole commit with AlreadyExists.
type Firestore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

// contactDoc is the stored document shape.
type contactDoc struct {
	Name      string    `firestore:"name"`
	Phone     string    `firestore:"phone"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type phoneDoc struct {
	ContactID string `firestore:"contactId"`
}

var errDocMissing = errors.New("document missing")

// OpenFirestore initializes a Firebase app for projectID and returns a store
// on the given collection. credentialsPath may be empty to use application
// default credentials or the emulator (FIRESTORE_EMULATOR_HOST).
func OpenFirestore(ctx context.Context, projectID, credentialsPath, collection string) (*Firestore, error) {
	if projectID == "" {
		return nil, errors.New("firestore: project id is required")
	}
	if collection == "" {
		collection = "contacts"
	}

	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}
	return &Firestore{client: client, collection: collection, now: time.Now}, nil
}

// Close releases the Firestore client.
func (db *Firestore) Close() error {
	return db.client.Close()
}

func (db *Firestore) contacts() *firestore.CollectionRef {
	return db.client.Collection(db.collection)
}

func (db *Firestore) phones() *firestore.CollectionRef {
	return db.client.Collection(db.collection + "_by_phone")
}

// Insert creates the phone index and the contact document together.
func (db *Firestore) Insert(ctx context.Context, name, phone string) (*contacts.Contact, error) {
	c, err := contacts.NewContact(name, phone, db.now())
	if err != nil {
		return nil, err
	}

	err = db.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(db.phones().Doc(c.Phone), phoneDoc{ContactID: c.ID}); err != nil {
			return err
		}
		return tx.Create(db.contacts().Doc(c.ID), contactDoc{
			Name:      c.Name,
			Phone:     c.Phone,
			CreatedAt: c.CreatedAt,
		})
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, contacts.Duplicate()
		}
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return c, nil
}

// List returns all contacts ordered by name.
func (db *Firestore) List(ctx context.Context) ([]*contacts.Contact, error) {
	snaps, err := db.contacts().OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	list := make([]*contacts.Contact, 0, len(snaps))
	for _, snap := range snaps {
		var doc contactDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode contact %s: %w", snap.Ref.ID, err)
		}
		list = append(list, &contacts.Contact{
			ID:        snap.Ref.ID,
			Name:      doc.Name,
			Phone:     doc.Phone,
			CreatedAt: doc.CreatedAt.UTC(),
		})
	}
	// Firestore only orders by name; break ties by creation time.
	slices.SortStableFunc(list, func(a, b *contacts.Contact) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return list, nil
}

// Delete removes the contact document and its phone index entry.
func (db *Firestore) Delete(ctx context.Context, id string) (bool, error) {
	if !contacts.ValidID(id) {
		return false, nil
	}

	ref := db.contacts().Doc(id)
	err := db.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errDocMissing
			}
			return err
		}
		var doc contactDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		if err := tx.Delete(ref); err != nil {
			return err
		}
		return tx.Delete(db.phones().Doc(doc.Phone))
	})
	if errors.Is(err, errDocMissing) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
