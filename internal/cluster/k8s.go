// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cluster

import (
	"context"
	"fmt"

	"github.com/kubefuse/kubefuse/common"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// Config carries the connection parameters for DialK8s, mirroring the
// fields cfg.Config.Kubernetes exposes to the CLI.
type Config struct {
	// Kubeconfig is the path to a kubeconfig file. Empty selects the
	// in-cluster config when running inside a pod, falling back to
	// client-go's default loading rules ($KUBECONFIG, ~/.kube/config).
	Kubeconfig string

	// Context overrides the kubeconfig's current-context.
	Context string

	// InsecureSkipTLSVerify disables server certificate verification.
	InsecureSkipTLSVerify bool

	// QPS and Burst configure the client-go rate limiter. Zero values
	// fall back to client-go's defaults.
	QPS   float32
	Burst int
}

// k8sClient implements Client against a real API server via a dynamic
// client, resolving GVK -> GVR and scope through a cached REST mapper —
// the same apply/discovery plumbing demonstrated in the apply tooling
// this package is grounded on.
type k8sClient struct {
	dynamicClient dynamic.Interface
	mapper        meta.RESTMapper
}

// DialK8s builds a Client from cfg, loading a kubeconfig (or in-cluster
// config) and wiring a dynamic client plus a cached discovery-backed REST
// mapper.
func DialK8s(cfg Config) (Client, error) {
	restCfg, err := buildRESTConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("building kubernetes client config: %w", err)
	}
	if cfg.InsecureSkipTLSVerify {
		restCfg.TLSClientConfig.Insecure = true
		restCfg.TLSClientConfig.CAFile = ""
		restCfg.TLSClientConfig.CAData = nil
	}
	if cfg.QPS > 0 {
		restCfg.QPS = cfg.QPS
	}
	if cfg.Burst > 0 {
		restCfg.Burst = cfg.Burst
	}

	dyn, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("building dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("building discovery client: %w", err)
	}
	cachedDiscovery := memory.NewMemCacheClient(discoveryClient)
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(cachedDiscovery)

	return &k8sClient{dynamicClient: dyn, mapper: mapper}, nil
}

func buildRESTConfig(cfg Config) (*rest.Config, error) {
	if cfg.Kubeconfig == "" {
		if inClusterCfg, err := rest.InClusterConfig(); err == nil {
			return inClusterCfg, nil
		}
	}

	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if cfg.Kubeconfig != "" {
		loadingRules.ExplicitPath = cfg.Kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{}
	if cfg.Context != "" {
		overrides.CurrentContext = cfg.Context
	}

	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
}

func (c *k8sClient) resourceFor(gvk schema.GroupVersionKind) (schema.GroupVersionResource, bool, error) {
	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return schema.GroupVersionResource{}, false, fmt.Errorf("resolving %s: %w", gvk, err)
	}
	namespaced := mapping.Scope.Name() == meta.RESTScopeNameNamespace
	return mapping.Resource, namespaced, nil
}

func (c *k8sClient) ListNamespaces(ctx context.Context) ([]string, error) {
	return c.ListClusterScoped(ctx, schema.GroupVersionKind{Group: "", Version: "v1", Kind: "Namespace"})
}

func (c *k8sClient) ListNamespaced(ctx context.Context, gvk schema.GroupVersionKind, namespace string) ([]string, error) {
	gvr, _, err := c.resourceFor(gvk)
	if err != nil {
		return nil, err
	}
	return c.listNames(ctx, func(opts metav1.ListOptions) (*unstructured.UnstructuredList, error) {
		return c.dynamicClient.Resource(gvr).Namespace(namespace).List(ctx, opts)
	})
}

func (c *k8sClient) ListClusterScoped(ctx context.Context, gvk schema.GroupVersionKind) ([]string, error) {
	gvr, _, err := c.resourceFor(gvk)
	if err != nil {
		return nil, err
	}
	return c.listNames(ctx, func(opts metav1.ListOptions) (*unstructured.UnstructuredList, error) {
		return c.dynamicClient.Resource(gvr).List(ctx, opts)
	})
}

// listNames drains a paginated List call, buffering each page's items in
// a FIFO queue before flattening them to names. The queue itself does not
// need to outlive one call, but using it keeps the paging loop's buffering
// concern separated from the per-item name extraction, and is the same
// generic queue the rest of the teacher's codebase reaches for instead of
// a bare slice append loop.
func (c *k8sClient) listNames(ctx context.Context, list func(metav1.ListOptions) (*unstructured.UnstructuredList, error)) ([]string, error) {
	pages := common.NewLinkedListQueue[*unstructured.UnstructuredList]()

	var continueToken string
	for {
		result, err := list(metav1.ListOptions{Continue: continueToken})
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		pages.Push(result)

		continueToken = result.GetContinue()
		if continueToken == "" {
			break
		}
	}

	var names []string
	for !pages.IsEmpty() {
		page := pages.Pop()
		for _, item := range page.Items {
			names = append(names, item.GetName())
		}
	}
	return names, nil
}

func (c *k8sClient) Get(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) (*unstructured.Unstructured, error) {
	gvr, namespaced, err := c.resourceFor(gvk)
	if err != nil {
		return nil, err
	}

	var resourceClient dynamic.ResourceInterface
	resourceClient = c.dynamicClient.Resource(gvr)
	if namespaced {
		resourceClient = c.dynamicClient.Resource(gvr).Namespace(namespace)
	}

	obj, err := resourceClient.Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting %s %q: %w", gvk.Kind, name, err)
	}
	return obj, nil
}
