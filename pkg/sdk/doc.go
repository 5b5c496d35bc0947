// Package matchcraft provides an embedded Go client for the MatchCraft
// profile store, backed by Redis, Valkey or an in-process memory store.
//
// The client runs the same services as the HTTP API without a network hop:
//
//	client, _ := matchcraft.New(ctx, matchcraft.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	p, _ := client.Profiles().Create(ctx, matchcraft.ProfileInput{
//	    DisplayName: "Priya Sharma",
//	    Profession:  "Doctor",
//	})
//	items, _ := client.Suggest(ctx, "pri")
//
// # Search-as-you-type
//
// SuggestSession debounces keystrokes and discards results of superseded
// queries, so only the answer to the latest input reaches the callback:
//
//	s := client.NewSuggestSession(ctx, func(r matchcraft.SuggestResult) {
//	    render(r.Items)
//	})
//	defer s.Close()
//	s.Type("p")
//	s.Type("pr")
//	s.Type("pri") // only this lookup runs after the debounce delay
package matchcraft
