package store

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		log.Printf("music-service: extension pgcrypto: %v", err)
	}

	_, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS users (
          id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          username   TEXT NOT NULL,
          email      TEXT UNIQUE NOT NULL,
          password   TEXT NOT NULL,
          picture    TEXT NOT NULL DEFAULT 'default.png',
          playlists  INT NOT NULL DEFAULT 0,
          is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `)
	if err != nil {
		log.Printf("music-service: migrate users: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS songs (
          id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          title      TEXT NOT NULL,
          artist     TEXT NOT NULL,
          lyrics     TEXT NOT NULL DEFAULT 'This track has no lyrics.',
          file       TEXT NOT NULL,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		log.Printf("music-service: migrate songs: %v", err)
		return err
	}

	// Playlists reference their owner by plain id on purpose: deleting a user
	// orphans the playlists instead of cascading.
	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlists (
          id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          user_id    uuid NOT NULL,
          name       TEXT NOT NULL,
          songs      TEXT[] NOT NULL DEFAULT '{}',
          songs_num  INT NOT NULL DEFAULT 0,
          author     TEXT NOT NULL,
          is_private BOOLEAN NOT NULL DEFAULT FALSE,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		log.Printf("music-service: migrate playlists: %v", err)
		return err
	}

	return nil
}
