package main

import (
	"fmt"
	"time"

	"github.com/reactnet-go/reactnet"
)

func main() {
	net := reactnet.NewNetwork()
	ref := reactnet.NewRef(net)
	defer ref.Close()

	a := reactnet.NewBehavior[int]("a", 1)
	b := reactnet.NewBehavior[int]("b", 2)
	sum := reactnet.NewBehavior[int]("sum", 0)

	link := reactnet.NewLink("a+b", []reactnet.Reactive{a, b}, []reactnet.Reactive{sum},
		func(in reactnet.Result) (*reactnet.Result, error) {
			av := in.InputRVTs[a.Raw()].Value.Unwrap().(int)
			bv := in.InputRVTs[b.Raw()].Value.Unwrap().(int)
			total := av + bv
			fmt.Println("  [LINK] computing sum:", total)
			return &reactnet.Result{
				OutputRVTs: map[reactnet.RawReactive]reactnet.RVT{
					sum.Raw(): {Value: reactnet.Some(total), Time: in.InputRVTs[a.Raw()].Time},
				},
			}, nil
		})

	reactnet.AddLinks(ref, link)

	reactnet.Push(ref, a, 10)
	reactnet.Push(ref, b, 20)

	time.Sleep(100 * time.Millisecond)

	if v, ok := sum.Value(); ok {
		fmt.Println("sum is:", v)
	}
}
