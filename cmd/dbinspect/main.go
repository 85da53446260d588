// Command dbinspect dumps collection statistics from a PressMap database.
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/pressmapapp/pressmap-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/PressMap/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	prefixes := []string{
		"post:", "attachment:", "category:", "tag:", "author:",
		"comment:", "postmeta:", "ilink:", "elink:", "siteinfo:",
		"audit:", "job:",
	}
	for _, prefix := range prefixes {
		count, err := countPrefix(db, prefix)
		if err != nil {
			log.Fatalf("Failed to scan %s: %v", prefix, err)
		}
		fmt.Printf("%-12s %d\n", strings.TrimSuffix(prefix, ":"), count)
	}
	fmt.Println()

	if err := showPosts(db); err != nil {
		log.Fatalf("Failed to read posts: %v", err)
	}
}

func countPrefix(db *badger.DB, prefix string) (int, error) {
	count := 0
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			remainder := string(it.Item().Key())[len(prefix):]
			if strings.HasPrefix(remainder, "idx:") || strings.HasPrefix(remainder, "!") {
				continue
			}
			count++
		}
		return nil
	})
	return count, err
}

func showPosts(db *badger.DB) error {
	shown := 0
	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("post:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte("post:")); it.ValidForPrefix([]byte("post:")); it.Next() {
			if shown >= 5 {
				fmt.Println("  ...")
				return nil
			}

			remainder := string(it.Item().Key())[len("post:"):]
			if strings.HasPrefix(remainder, "idx:") || strings.HasPrefix(remainder, "!") {
				continue
			}

			err := it.Item().Value(func(val []byte) error {
				var post domain.Post
				if err := json.Unmarshal(val, &post); err != nil {
					return err
				}
				fmt.Printf("Post %d: %s\n", post.PostID, post.Title)
				fmt.Printf("  Slug: %s\n", post.PostName)
				fmt.Printf("  Type: %s  Status: %s\n", post.PostType, post.Status)
				fmt.Printf("  Body: %d bytes  Markdown: %d bytes\n",
					len(post.ContentEncoded), len(post.Markdown))
				fmt.Println()
				return nil
			})
			if err != nil {
				return err
			}
			shown++
		}
		return nil
	})
}
