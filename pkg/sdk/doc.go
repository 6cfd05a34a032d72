// Package userdex provides an embedded Go client for the userdex user store
// backed by Elasticsearch.
//
// The client talks to Elasticsearch directly; no userdex server is needed.
//
//	client, err := userdex.New(ctx,
//	    userdex.WithElasticsearch("http://localhost:9200"),
//	    userdex.WithIndex("users"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	users := client.Users()
//	_ = users.CreateIndexIfNotExists(ctx, "users")
//	ok, _ := users.AddOrUpdate(ctx, userdex.User{Key: "u1", Fields: map[string]any{"name": "Ann"}})
//	u, found, _ := users.Get(ctx, "u1")
package userdex
