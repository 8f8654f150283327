package kiln

import (
	"time"
)

type RegisterObserver func(key string)

type ProvideObserver func(key string, duration time.Duration, err error)

type InitObserver func(key string, duration time.Duration, err error)

type DestroyObserver func(key string, duration time.Duration, err error)
