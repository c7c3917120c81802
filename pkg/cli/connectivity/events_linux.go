/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

//go:build linux

package connectivity

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
)

// NetworkEvents subscribes to link, address and route changes over netlink
func NetworkEvents(ctx context.Context) (<-chan struct{}, error) {
	done := make(chan struct{})
	links := make(chan netlink.LinkUpdate, 16)
	addrs := make(chan netlink.AddrUpdate, 16)
	routes := make(chan netlink.RouteUpdate, 16)

	if err := netlink.LinkSubscribe(links, done); err != nil {
		close(done)
		return nil, errors.Wrap(err, "subscribing to link updates")
	}
	if err := netlink.AddrSubscribe(addrs, done); err != nil {
		close(done)
		return nil, errors.Wrap(err, "subscribing to address updates")
	}
	if err := netlink.RouteSubscribe(routes, done); err != nil {
		close(done)
		return nil, errors.Wrap(err, "subscribing to route updates")
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer close(done)

		for {
			var ok bool
			select {
			case <-ctx.Done():
				return
			case _, ok = <-links:
			case _, ok = <-addrs:
			case _, ok = <-routes:
			}
			if !ok {
				return
			}

			notify(out)
		}
	}()

	return out, nil
}
