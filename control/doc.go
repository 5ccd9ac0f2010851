// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime observability and dynamic configuration for foreignbuf
// components: a thread-safe metrics registry fed by the bridges and
// the frame pool, and a config store with hot-reload listeners.
package control
