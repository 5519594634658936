// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

//go:generate mockgen -destination=mock_observer_test.go -package $GOPACKAGE . Observer
