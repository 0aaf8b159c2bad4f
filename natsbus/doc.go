// Package natsbus provides the messaging capability the rxbridge adapters are
// fed from: point-to-point send with an optional reply callback, publish, and
// consumer registration, realised on NATS subjects.
//
// A Consumer is a push source: it exposes single-slot item, exception and end
// handlers, so it can be adapted with rxbridge.ToObservable. Setting a non-nil
// item handler registers the underlying NATS subscription; clearing it (or
// calling Unregister) removes the subscription and fires the end handler.
//
// Reply callbacks use rxbridge.Callback, so an observer can be plugged in with
// rxbridge.ToCallback, or many observers with rxbridge.ObservableCallback.
//
// Example:
//
//	bus, _ := natsbus.New(nc)
//	consumer := bus.Consumer("orders")
//	sub, _ := rxbridge.ToObservable[*natsbus.Message](consumer).SubscribeFunc(
//		func(m *natsbus.Message) { fmt.Println(string(m.Body)) }, nil, nil)
//	defer sub.Unsubscribe()
package natsbus
